package config

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"toolscout/internal/domain"
)

const defaultReloadDebounce = 200 * time.Millisecond

// Provider loads the configuration once at startup and keeps it fresh by
// watching the file for changes. Readers always see a complete, validated
// snapshot; a reload that fails validation keeps the previous one.
type Provider struct {
	logger     *zap.Logger
	loader     *Loader
	configPath string

	state    atomic.Value
	reloadMu sync.Mutex
}

func NewProvider(ctx context.Context, configPath string, logger *zap.Logger) (*Provider, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	loader := NewLoader(logger)
	cfg, err := loader.Load(ctx, configPath)
	if err != nil {
		return nil, err
	}

	provider := &Provider{
		logger:     logger.Named("config_provider"),
		loader:     loader,
		configPath: configPath,
	}
	provider.state.Store(cfg)
	return provider, nil
}

// Current returns the latest validated configuration snapshot.
func (p *Provider) Current() domain.Config {
	return p.state.Load().(domain.Config)
}

func (p *Provider) CatalogSource() domain.CatalogSourceConfig {
	return p.Current().Catalog
}

func (p *Provider) RecommenderSettings() domain.RecommenderConfig {
	return p.Current().Recommender
}

func (p *Provider) ModelSettings() domain.ModelConfig {
	return p.Current().Model
}

// Reload forces a synchronous reload of the configuration file.
func (p *Provider) Reload(ctx context.Context) error {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	cfg, err := p.loader.Load(ctx, p.configPath)
	if err != nil {
		return err
	}
	p.state.Store(cfg)
	return nil
}

// Watch blocks watching the config file for changes until ctx is canceled.
// File events are debounced because editors tend to emit several writes per
// save.
func (p *Provider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Warn("config watcher failed", zap.Error(err))
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.configPath)); err != nil {
		p.logger.Warn("config watcher add failed", zap.String("path", p.configPath), zap.Error(err))
		return err
	}

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-watcher.Errors:
			if err != nil {
				p.logger.Warn("config watcher error", zap.Error(err))
			}
		case event := <-watcher.Events:
			if !shouldReloadForPath(event.Name, p.configPath) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(defaultReloadDebounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(defaultReloadDebounce)
		case <-timerChan(timer):
			timer = nil
			if err := p.Reload(ctx); err != nil {
				p.logger.Warn("config reload failed, keeping previous configuration", zap.Error(err))
				continue
			}
			p.logger.Info("configuration reloaded", zap.String("path", p.configPath))
		}
	}
}

func shouldReloadForPath(path string, configPath string) bool {
	if path == "" || configPath == "" {
		return false
	}
	return filepath.Clean(path) == filepath.Clean(configPath)
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
