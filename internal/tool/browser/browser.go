// Package browser opens allowlisted HTTPS pages in the user's browser.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/Cyclone1070/claw/internal/tool/service/executor"
)

var (
	ErrInsecureScheme  = errors.New("only https URLs can be opened")
	ErrDomainNotListed = errors.New("domain is not in the browser allowlist")
)

// openTimeout bounds the opener program, which returns once the browser has the URL.
const openTimeout = 30 * time.Second

type commandRunner interface {
	Run(ctx context.Context, c executor.Command) (*executor.Result, error)
}

type quota interface {
	AuthorizeMutation(subject string, costCents int) error
}

// OpenTool implements browser_open.
type OpenTool struct {
	quota   quota
	runner  commandRunner
	allowed []string
	goos    string
}

func NewOpenTool(quota quota, runner commandRunner, cfg config.BrowserConfig) *OpenTool {
	if quota == nil || runner == nil {
		panic("quota and runner are required")
	}
	allowed := make([]string, 0, len(cfg.AllowedDomains))
	for _, d := range cfg.AllowedDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "*."))
		if d != "" {
			allowed = append(allowed, d)
		}
	}
	return &OpenTool{quota: quota, runner: runner, allowed: allowed, goos: runtime.GOOS}
}

func (t *OpenTool) Name() string { return "browser_open" }

func (t *OpenTool) Description() string {
	return fmt.Sprintf("Open an HTTPS URL in the user's browser. Allowed domains: %s.", strings.Join(t.allowed, ", "))
}

func (t *OpenTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"url": {Type: tool.TypeString, Description: "The https:// URL to open"},
		},
		Required: []string{"url"},
	}
}

type openRequest struct {
	URL string `json:"url"`
}

func (t *OpenTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req openRequest
	if err := tool.DecodeArgs(args, &req); err != nil {
		return tool.Fail(err)
	}
	u, err := t.CheckURL(req.URL)
	if err != nil {
		return tool.Fail(err)
	}
	if err := t.quota.AuthorizeMutation("browser_open "+u.Host, 0); err != nil {
		return tool.Fail(err)
	}

	cmd := t.openerCommand(u.String())
	res, err := t.runner.Run(ctx, executor.Command{Argv: cmd, Timeout: openTimeout})
	if err != nil {
		msg := err.Error()
		if res != nil && strings.TrimSpace(res.Stderr) != "" {
			msg += ": " + strings.TrimSpace(res.Stderr)
		}
		return tool.Failf("failed to open %s: %s", u, msg)
	}
	return tool.OK(fmt.Sprintf("Opened %s in the browser", u))
}

// CheckURL parses raw and verifies it against the scheme and domain rules.
func (t *OpenTool) CheckURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &tool.ValidationError{Field: "url", Reason: "is required"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &tool.ValidationError{Field: "url", Reason: err.Error()}
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return nil, fmt.Errorf("%w: %s", ErrInsecureScheme, raw)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, &tool.ValidationError{Field: "url", Reason: "has no host"}
	}
	if u.User != nil {
		return nil, &tool.ValidationError{Field: "url", Reason: "must not carry credentials"}
	}
	if !t.hostAllowed(host) {
		return nil, fmt.Errorf("%w: %s", ErrDomainNotListed, host)
	}
	return u, nil
}

func (t *OpenTool) hostAllowed(host string) bool {
	host = strings.TrimSuffix(host, ".")
	for _, d := range t.allowed {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func (t *OpenTool) openerCommand(target string) []string {
	switch t.goos {
	case "darwin":
		return []string{"open", target}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", target}
	default:
		return []string{"xdg-open", target}
	}
}
