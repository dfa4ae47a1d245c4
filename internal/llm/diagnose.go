package llm

import (
	"context"
	"net/http"
	"strings"
)

// Diagnosis is the result of an interactive backend check.
type Diagnosis struct {
	Host           string
	Running        bool
	Banner         string
	Models         []string
	ModelInstalled bool
	Err            error
}

// Diagnose probes the root endpoint, then lists models and checks that the
// configured model is installed.
func (o *Ollama) Diagnose(ctx context.Context) Diagnosis {
	d := Diagnosis{Host: o.cfg.Host}

	rootCtx, cancel := context.WithTimeout(ctx, o.cfg.PreflightTimeout)
	status, body, err := o.do(rootCtx, http.MethodGet, "/", nil)
	cancel()
	if err != nil {
		d.Err = &Error{Kind: KindUnreachable, Detail: o.cfg.Host, Err: err}
		return d
	}
	d.Banner = strings.TrimSpace(string(body))
	d.Running = status == http.StatusOK && strings.Contains(d.Banner, "Ollama is running")

	models, err := o.ListModels(ctx)
	if err != nil {
		d.Err = err
		return d
	}
	d.Models = models
	for _, m := range models {
		if m == o.cfg.Model || strings.TrimSuffix(m, ":latest") == o.cfg.Model {
			d.ModelInstalled = true
			break
		}
	}
	return d
}
