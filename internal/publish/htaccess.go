// Package publish applies redirect directives to the site.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/conflict"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

const rulePrefix = "Redirect 301 "

// ErrForeignSite is returned for a directive whose loser page belongs to
// another site than the file being managed.
var ErrForeignSite = errors.New("redirect source is not on this site")

// HtaccessPublisher maintains permanent redirects in one site's Apache
// .htaccess file. Lines it does not own are preserved.
type HtaccessPublisher struct {
	path   string
	site   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewHtaccessPublisher creates a publisher writing to path for the site
// host. An empty site accepts directives for any host.
func NewHtaccessPublisher(path, site string, logger *zap.Logger) *HtaccessPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HtaccessPublisher{path: path, site: normalizeHost(site), logger: logger}
}

// Path returns the managed file.
func (p *HtaccessPublisher) Path() string {
	return p.path
}

// ApplyRedirect writes the rule for d. Applying the same directive twice is
// a no-op; a different rule for the same loser path is replaced. A loser on
// another site is rejected with ErrForeignSite.
func (p *HtaccessPublisher) ApplyRedirect(ctx context.Context, d types.RedirectDirective) error {
	rule, err := conflict.HtaccessRule(d)
	if err != nil {
		return err
	}
	if err := p.checkSite(d.LoserURL); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	lines, err := p.readLines()
	if err != nil {
		return err
	}
	updated, changed := upsertRule(lines, rule)
	if !changed {
		p.logger.Debug("redirect already present", zap.String("rule", rule))
		return nil
	}
	if err := writeAtomic(p.path, updated); err != nil {
		return err
	}
	p.logger.Info("redirect published", zap.String("rule", rule), zap.String("file", p.path))
	return nil
}

func (p *HtaccessPublisher) checkSite(loserURL string) error {
	if p.site == "" {
		return nil
	}
	u, err := url.Parse(loserURL)
	if err != nil {
		return fmt.Errorf("invalid loser url %q: %w", loserURL, err)
	}
	if host := normalizeHost(u.Hostname()); host != "" && host != p.site {
		return fmt.Errorf("%s is not on %s: %w", loserURL, p.site, ErrForeignSite)
	}
	return nil
}

// normalizeHost lowercases host and drops a leading "www.".
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

// HtaccessSites hands out one publisher per site, each with its own file at
// <root>/<domain>/.htaccess.
type HtaccessSites struct {
	root   string
	logger *zap.Logger

	mu    sync.Mutex
	sites map[string]*HtaccessPublisher
}

// NewHtaccessSites creates a publisher set rooted at dir.
func NewHtaccessSites(dir string, logger *zap.Logger) *HtaccessSites {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HtaccessSites{root: dir, logger: logger, sites: make(map[string]*HtaccessPublisher)}
}

// For returns the publisher for domain. The same domain always gets the same
// publisher so writes to one file are serialized.
func (s *HtaccessSites) For(domain string) (*HtaccessPublisher, error) {
	site := normalizeHost(domain)
	if site == "" || site == "." || site == ".." || strings.ContainsAny(site, `/\`) {
		return nil, fmt.Errorf("invalid site domain %q", domain)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.sites[site]; ok {
		return p, nil
	}
	p := NewHtaccessPublisher(filepath.Join(s.root, site, ".htaccess"), site, s.logger.With(zap.String("site", site)))
	s.sites[site] = p
	return p, nil
}

// Rules returns the redirect lines currently in the file.
func (p *HtaccessPublisher) Rules() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	lines, err := p.readLines()
	if err != nil {
		return nil, err
	}
	var rules []string
	for _, l := range lines {
		if strings.HasPrefix(l, rulePrefix) {
			rules = append(rules, l)
		}
	}
	return rules, nil
}

func (p *HtaccessPublisher) readLines() ([]string, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.path, err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// upsertRule replaces the rule for the same source path or appends it.
func upsertRule(lines []string, rule string) ([]string, bool) {
	source := ruleSource(rule)
	out := make([]string, 0, len(lines)+1)
	replaced := false
	for _, l := range lines {
		if strings.HasPrefix(l, rulePrefix) && ruleSource(l) == source {
			if l == rule {
				return lines, false
			}
			if !replaced {
				out = append(out, rule)
				replaced = true
			}
			continue
		}
		out = append(out, l)
	}
	if !replaced {
		out = append(out, rule)
	}
	return out, true
}

func ruleSource(line string) string {
	fields := strings.Fields(strings.TrimPrefix(line, rulePrefix))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func writeAtomic(path string, lines []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".htaccess-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// LogPublisher only logs directives. It backs dry runs.
type LogPublisher struct {
	Logger *zap.Logger
}

// ApplyRedirect logs d.
func (p LogPublisher) ApplyRedirect(_ context.Context, d types.RedirectDirective) error {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("redirect (dry run)",
		zap.String("term", d.Term),
		zap.String("loser", d.LoserURL),
		zap.String("winner", d.WinnerURL))
	return nil
}
