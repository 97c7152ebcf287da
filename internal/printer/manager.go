package printer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/config"
	"github.com/ziadkadry99/labelkit/internal/db"
	"github.com/ziadkadry99/labelkit/internal/logging"
	"github.com/ziadkadry99/labelkit/internal/metrics"
)

// Job statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// recentJobs is how many records Manager keeps in memory.
const recentJobs = 50

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Record is the outcome of one submitted job.
type Record struct {
	ID           string            `json:"id"`
	TemplateID   string            `json:"template_id"`
	TemplateName string            `json:"template_name"`
	Printer      string            `json:"printer"`
	Status       string            `json:"status"`
	Data         map[string]string `json:"data"`
	Error        string            `json:"error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Manager sends jobs to the configured printer and records each one.
type Manager struct {
	db      *db.DB
	printer Printer
	jobs    *JobBuffer
	log     *zap.Logger
}

// NewManager creates a manager for p. When d is nil, history is kept in
// memory only.
func NewManager(d *db.DB, p Printer, log *zap.Logger) *Manager {
	return &Manager{
		db:      d,
		printer: p,
		jobs:    NewJobBuffer(recentJobs),
		log:     logging.OrNop(log),
	}
}

// FromConfig builds the printer named by cfg.
func FromConfig(cfg config.PrinterConfig, log *zap.Logger) (Printer, error) {
	switch cfg.Type {
	case "", "log":
		return NewLogPrinter(cfg.Name, log), nil
	case "network":
		if cfg.Address == "" {
			return nil, fmt.Errorf("network printer needs an address")
		}
		port := cfg.Port
		if port == 0 {
			port = 9100
		}
		return NewNetworkPrinter(cfg.Name, cfg.Address, port, time.Duration(cfg.TimeoutSeconds)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown printer type %q", cfg.Type)
	}
}

// Printer returns the managed printer.
func (m *Manager) Printer() Printer { return m.printer }

// Submit prints job and records the outcome. The record is returned even
// when printing fails.
func (m *Manager) Submit(ctx context.Context, job Job) (Record, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	rec := Record{
		ID:           job.ID,
		TemplateID:   job.TemplateID,
		TemplateName: job.TemplateName,
		Printer:      m.printer.Name(),
		Status:       StatusCompleted,
		Data:         job.Data,
		CreatedAt:    time.Now().UTC(),
	}

	printErr := m.printer.Print(ctx, job)
	metrics.ObservePrint(m.printer.Name(), printErr)
	if printErr != nil {
		rec.Status = StatusFailed
		rec.Error = printErr.Error()
		m.log.Error("print failed", zap.String("job", rec.ID), zap.String("printer", rec.Printer), zap.Error(printErr))
	} else {
		m.log.Info("print job sent", zap.String("job", rec.ID), zap.String("template", rec.TemplateID))
	}

	m.jobs.Add(rec)
	if err := m.save(ctx, rec); err != nil {
		m.log.Error("recording print job", zap.String("job", rec.ID), zap.Error(err))
	}
	if printErr != nil {
		return rec, fmt.Errorf("printing %s: %w", job.TemplateName, printErr)
	}
	return rec, nil
}

func (m *Manager) save(ctx context.Context, rec Record) error {
	if m.db == nil {
		return nil
	}
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return err
	}
	_, err = m.db.ExecContext(ctx,
		`INSERT INTO print_jobs (id, template_id, template_name, printer, status, data, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TemplateID, rec.TemplateName, rec.Printer, rec.Status, string(data), rec.Error, rec.CreatedAt.Format(timeLayout),
	)
	return err
}

// Recent returns the jobs submitted since start, newest first.
func (m *Manager) Recent() []Record { return m.jobs.Entries() }

// History returns up to limit recorded jobs, newest first.
func (m *Manager) History(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = recentJobs
	}
	if m.db == nil {
		recent := m.Recent()
		if len(recent) > limit {
			recent = recent[:limit]
		}
		return recent, nil
	}

	rows, err := m.db.QueryContext(ctx,
		`SELECT id, template_id, template_name, printer, status, data, error, created_at
		 FROM print_jobs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing print jobs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var data, created string
		if err := rows.Scan(&rec.ID, &rec.TemplateID, &rec.TemplateName, &rec.Printer,
			&rec.Status, &data, &rec.Error, &created); err != nil {
			return nil, fmt.Errorf("scanning print job: %w", err)
		}
		if t, err := time.Parse(timeLayout, created); err == nil {
			rec.CreatedAt = t
		}
		if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
			return nil, fmt.Errorf("decoding print job %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
