// Package printer delivers filled labels to a print facility and keeps a
// history of print jobs.
package printer

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/logging"
)

// Job is one filled template handed to a printer.
type Job struct {
	ID           string
	TemplateID   string
	TemplateName string
	// Data maps element ids to their printed values.
	Data map[string]string
	// Order lists the keys of Data in element order.
	Order []string
}

// Body renders the job as plain text, one "id: value" line per element.
func (j Job) Body() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s (%s)\n", j.TemplateName, j.TemplateID)
	for _, id := range j.Order {
		fmt.Fprintf(&buf, "%s: %s\n", id, j.Data[id])
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

// Printer is a print facility.
type Printer interface {
	Name() string
	Type() string
	Print(ctx context.Context, job Job) error
}

// LogPrinter stands in for an interactive print dialog. It accepts every
// job and writes it to the log.
type LogPrinter struct {
	name string
	log  *zap.Logger
}

// NewLogPrinter creates a LogPrinter.
func NewLogPrinter(name string, log *zap.Logger) *LogPrinter {
	if name == "" {
		name = "dialog"
	}
	return &LogPrinter{name: name, log: logging.OrNop(log)}
}

func (p *LogPrinter) Name() string { return p.name }
func (p *LogPrinter) Type() string { return "log" }

// Print logs the job's data.
func (p *LogPrinter) Print(ctx context.Context, job Job) error {
	fields := []zap.Field{
		zap.String("job", job.ID),
		zap.String("template", job.TemplateID),
		zap.String("template_name", job.TemplateName),
	}
	for _, id := range job.Order {
		fields = append(fields, zap.String("element."+id, job.Data[id]))
	}
	p.log.Info("print job", fields...)
	return nil
}

// NetworkPrinter sends jobs as plain text to a raw TCP print port.
type NetworkPrinter struct {
	name    string
	address string
	port    int
	timeout time.Duration

	mu sync.Mutex
}

// NewNetworkPrinter creates a network printer at address:port. A zero
// timeout means ten seconds.
func NewNetworkPrinter(name, address string, port int, timeout time.Duration) *NetworkPrinter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if name == "" {
		name = address
	}
	return &NetworkPrinter{name: name, address: address, port: port, timeout: timeout}
}

func (p *NetworkPrinter) Name() string { return p.name }
func (p *NetworkPrinter) Type() string { return "network" }

func (p *NetworkPrinter) addr() string {
	return net.JoinHostPort(p.address, strconv.Itoa(p.port))
}

// Status reports "online" if the print port accepts connections.
func (p *NetworkPrinter) Status(ctx context.Context) string {
	d := net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", p.addr())
	if err != nil {
		return "offline"
	}
	conn.Close()
	return "online"
}

// Print connects, writes the job body and closes. Jobs are sent one at a
// time.
func (p *NetworkPrinter) Print(ctx context.Context, job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", p.addr())
	if err != nil {
		return fmt.Errorf("connecting to printer %s: %w", p.name, err)
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(p.timeout))
	if _, err := conn.Write(job.Body()); err != nil {
		return fmt.Errorf("sending job to printer %s: %w", p.name, err)
	}
	return nil
}
