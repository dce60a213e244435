// lazyhlo_devices lists the devices of a kind reported by a device client, and optionally checks each
// local device with a round trip of a small tensor through the execution pipeline.
//
// Usage:
//
//	lazyhlo_devices -backend=xla -plugin=cuda -kind=gpu -probe
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/lazyhlo"
	"github.com/gomlx/lazyhlo/backends/hostref"
	"github.com/gomlx/lazyhlo/backends/xla"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/ir"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/testutil"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagBackend = flag.String("backend", "hostref", "Device client to use: \"hostref\" or \"xla\".")
	flagPlugin  = flag.String("plugin", "cpu", "PJRT plugin name or path, for -backend=xla.")
	flagKind    = flag.String("kind", "cpu", "Kind of devices to list: cpu, gpu or tpu.")
	flagLocal   = flag.String("local", "cpu:0", "Comma-separated local devices, for -backend=hostref.")
	flagAll     = flag.String("all", "", "Comma-separated devices, including remote ones, for -backend=hostref. Defaults to -local.")
	flagProbe   = flag.Bool("probe", false, "Stage, execute and fetch a small tensor on each local device.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if err := run(); err != nil {
		klog.Errorf("lazyhlo_devices: %+v", err)
		os.Exit(1)
	}
}

func splitList(list string) []string {
	var items []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// newClient returns the device client selected by the flags, and a function to release it.
func newClient() (device.Client, func(), error) {
	switch *flagBackend {
	case "hostref":
		client, err := hostref.New(hostref.Config{
			LocalDevices: splitList(*flagLocal),
			AllDevices:   splitList(*flagAll),
		})
		return client, func() {}, err
	case "xla":
		client, err := xla.New(*flagPlugin, nil)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {
			if err := client.Finalize(); err != nil {
				klog.Warningf("failed to finalize xla client: %+v", err)
			}
		}, nil
	}
	return nil, nil, errors.Errorf("unknown -backend=%q, valid values are \"hostref\" and \"xla\"", *flagBackend)
}

func run() error {
	kind, err := device.KindString(*flagKind)
	if err != nil || kind == device.KindInvalid {
		return errors.Errorf("invalid -kind=%q, valid values are %v", *flagKind, device.KindStrings()[1:])
	}
	client, release, err := newClient()
	if err != nil {
		return err
	}
	defer release()

	var found bool
	var probeErr error
	err = testutil.WithAllDevices(client, kind, func(local, all []device.Device) {
		found = true
		table := newPlainTable(true)
		header := []string{"Device", "Local", "Default"}
		if *flagProbe {
			header = append(header, "Probe")
		}
		table.Row(header...)
		p := lazyhlo.New(client)
		for _, dev := range all {
			isLocal := slices.Contains(local, dev)
			row := []string{dev.String(), yesNo(isLocal), yesNo(dev.String() == client.DefaultDevice())}
			if *flagProbe {
				cell := "-"
				if isLocal {
					elapsed, err := probe(p, dev)
					if err != nil {
						cell = "failed"
						probeErr = errors.WithMessagef(err, "probing %s", dev)
					} else {
						cell = elapsed.Round(time.Microsecond).String()
					}
				}
				row = append(row, cell)
			}
			table.Row(row...)
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s devices (%s)", kind, *flagBackend)))
		fmt.Println(table.Render())
		fmt.Printf("%s local, %s total\n", humanize.Comma(int64(len(local))), humanize.Comma(int64(len(all))))
	})
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("No local %s devices found with backend %q.\n", kind, *flagBackend)
	}
	return probeErr
}

// probe runs x*x+x on dev and checks the result. The device data it creates is released.
func probe(p *lazyhlo.Pipeline, dev device.Device) (time.Duration, error) {
	start := time.Now()
	client := p.Client()
	input, err := p.ToDeviceData(tensor.MustFromValue([]float32{1, 2, 3}), dev)
	if err != nil {
		return 0, err
	}
	defer releaseData(client, input)
	g := ir.NewGraph("probe")
	x, err := g.DeviceData(input)
	if err != nil {
		return 0, err
	}
	y, err := ir.Mul(x, x)
	if err != nil {
		return 0, err
	}
	if y, err = ir.Add(y, x); err != nil {
		return 0, err
	}
	handles, err := p.Execute([]ir.Value{y}, dev)
	if err != nil {
		return 0, err
	}
	defer releaseData(client, handles...)
	results, err := p.Fetch(handles)
	if err != nil {
		return 0, err
	}
	comparator := &testutil.Comparator{Out: os.Stderr}
	if !comparator.EqualValues(tensor.MustFromValue([]float32{2, 6, 12}), results[0]) {
		return 0, errors.Errorf("unexpected result %s", results[0])
	}
	return time.Since(start), nil
}

func releaseData(client device.Client, data ...device.Data) {
	if err := client.ReleaseData(data...); err != nil {
		klog.Warningf("failed to release probe data: %+v", err)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 0, 4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if withHeader && row == 0 {
				return headerRowStyle
			}
			if row%2 == 0 {
				return evenRowStyle
			}
			return oddRowStyle
		})
}
