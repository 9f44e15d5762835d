// Command qrng-monitor is a terminal dashboard that polls a running
// qrng-server instance and displays device health, buffer fill, and host
// load, with a keybind to copy the last sampled bytes to the clipboard.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docdailey/quantum-entropy-api/internal/monitorclient"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF00")).
			Bold(true).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9CA3AF")).
			Padding(0, 1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#34D399")).
		Bold(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	copyNoticeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#10B981")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)
)

const pollInterval = 2 * time.Second

type tickMsg time.Time

type pollResult struct {
	health     *monitorclient.HealthResponse
	deviceInfo *monitorclient.DeviceInfoData
	metrics    *monitorclient.MetricsData
	sample     *monitorclient.BytesData
	err        error
}

type model struct {
	client      *monitorclient.Client
	addr        string
	last        pollResult
	copyNotice  string
	copyNoticeT time.Time
	width       int
	spin        spinner.Model
}

func initialModel(addr string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	return model{client: monitorclient.New(addr), addr: addr, spin: s}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(poll(m.client), tick(), m.spin.Tick)
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func poll(c *monitorclient.Client) tea.Cmd {
	return func() tea.Msg {
		var res pollResult
		res.health, res.err = c.GetHealth()
		if res.err != nil {
			return res
		}
		res.deviceInfo, res.err = c.GetDeviceInfo()
		if res.err != nil {
			return res
		}
		res.metrics, res.err = c.GetMetrics()
		if res.err != nil {
			return res
		}
		res.sample, res.err = c.GetRandomBytes(16, "hex", "none")
		return res
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "c":
			if m.last.sample != nil {
				if err := clipboard.WriteAll(m.last.sample.Bytes); err == nil {
					m.copyNotice = "copied last sample to clipboard"
					m.copyNoticeT = time.Now()
				} else {
					m.copyNotice = fmt.Sprintf("clipboard error: %v", err)
					m.copyNoticeT = time.Now()
				}
			}
			return m, nil
		}

	case tickMsg:
		return m, tea.Batch(poll(m.client), tick())

	case pollResult:
		m.last = msg
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	header := headerStyle.Render(fmt.Sprintf(" quantum-entropy-api monitor — %s ", m.addr))

	if m.last.err != nil {
		body := panelStyle.Render(errStyle.Render(fmt.Sprintf("error: %v", m.last.err)))
		return header + "\n\n" + body + "\n\n" + helpStyle.Render("q quit")
	}

	if m.last.health == nil {
		return header + "\n\n" + m.spin.View() + " connecting..."
	}

	statusStyle := okStyle
	if m.last.health.Status != "healthy" {
		statusStyle = errStyle
	}

	var dev string
	if m.last.deviceInfo != nil {
		dev = fmt.Sprintf("product: %s\nserial:  %s\nversion: %s\nbuffer:  %d / %d bytes",
			m.last.deviceInfo.Device.Product,
			m.last.deviceInfo.Device.Serial,
			m.last.deviceInfo.Device.Version,
			m.last.deviceInfo.BufferAvailable,
			m.last.deviceInfo.BufferSize,
		)
	}

	var metrics string
	if m.last.metrics != nil {
		metrics = fmt.Sprintf("refill running:     %v\nconsecutive errors: %d\nbuffer fill:        %.1f%%\nhost cpu:           %.1f%%\nhost mem:           %.1f%%",
			m.last.metrics.RefillRunning,
			m.last.metrics.RefillConsecutiveErrors,
			m.last.metrics.BufferFillPercent,
			m.last.metrics.HostCPUPercent,
			m.last.metrics.HostMemPercent,
		)
	}

	var sample string
	if m.last.sample != nil {
		sample = fmt.Sprintf("last sample (%s): %s", m.last.sample.Format, m.last.sample.Bytes)
	}

	status := fmt.Sprintf("status: %s  device: %s", statusStyle.Render(m.last.health.Status), m.last.health.Device)

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render("device\n\n"+dev),
		panelStyle.Render("metrics\n\n"+metrics),
	)

	out := header + "\n\n" + status + "\n\n" + panels + "\n\n" + panelStyle.Render(sample)

	if m.copyNotice != "" && time.Since(m.copyNoticeT) < 3*time.Second {
		out += "\n\n" + copyNoticeStyle.Render(m.copyNotice)
	}

	out += "\n\n" + helpStyle.Render("c copy last sample   q quit")
	return out
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "qrng-server base URL")
	flag.Parse()

	p := tea.NewProgram(initialModel(*addr))
	if _, err := p.Run(); err != nil {
		fmt.Println("error running monitor:", err)
	}
}
