package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
	"github.com/Luizsilva-repros/intranet/internal/auth/cachesync"
	"github.com/Luizsilva-repros/intranet/internal/db/controller/setting"
	"github.com/Luizsilva-repros/intranet/internal/directory"
	"github.com/Luizsilva-repros/intranet/internal/groupmap"
	"github.com/Luizsilva-repros/intranet/internal/identity"
)

// DirectoryConfigSetting is the settings key of the saved directory config.
const DirectoryConfigSetting = "directory_config"

// Options configure a Service.
type Options struct {
	DB     *gorm.DB
	Store  *accounts.Store
	Groups *groupmap.Table
	// Directory is the startup directory config, used until an
	// administrator saves one.
	Directory directory.Config
	// Open builds directory clients. Defaults to directory.Open.
	Open DirectoryOpener
	// Syncer writes directory identities into Store.
	Syncer *cachesync.Syncer
	// Queue runs the cache sync after directory logins. When nil the sync
	// runs inline and its error is only logged.
	Queue *cachesync.Queue
}

// Service is the authentication entry point. It tries its providers in
// order: directory first, then the local credential store.
type Service struct {
	db        *gorm.DB
	groups    *groupmap.Table
	open      DirectoryOpener
	syncer    *cachesync.Syncer
	queue     *cachesync.Queue
	cfg       atomic.Pointer[directory.Config]
	cfgMu     sync.Mutex
	dir       *DirectoryProvider
	providers []Provider
}

// NewService creates the service. A directory config saved in the settings
// table wins over opts.Directory.
func NewService(ctx context.Context, opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("auth: account store is nil")
	}

	if opts.Groups == nil {
		opts.Groups = groupmap.Default()
	}

	if opts.Open == nil {
		opts.Open = directory.Open
	}

	if opts.Syncer == nil {
		opts.Syncer = cachesync.NewSyncer(opts.Store)
	}

	s := &Service{
		db:     opts.DB,
		groups: opts.Groups,
		open:   opts.Open,
		syncer: opts.Syncer,
		queue:  opts.Queue,
	}

	cfg := opts.Directory.WithDefaults()

	if opts.DB != nil {
		var saved directory.Config

		err := setting.LoadJSON(ctx, opts.DB, DirectoryConfigSetting, &saved)

		switch {
		case err == nil:
			cfg = saved.WithDefaults()

			log.Info().Msg("using directory config saved in settings")
		case errors.Is(err, setting.ErrSettingNotFound):
		default:
			return nil, fmt.Errorf("failed to load directory config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("directory config is incomplete")
	}

	s.cfg.Store(&cfg)

	s.dir = NewDirectoryProvider(s.DirectoryConfig, opts.Open, opts.Groups)
	s.providers = []Provider{
		s.dir,
		NewLocalProvider(opts.Store, opts.Groups.Baseline()),
	}

	return s, nil
}

// Authenticate resolves id and credential. Errors of every provider but
// the last are logged and cause a fallback; only the last provider's error
// is returned. A directory identity is handed to the cache sync.
func (s *Service) Authenticate(ctx context.Context, id, credential string) (*identity.Identity, error) {
	if len(s.providers) == 0 {
		return nil, ErrNoProviders
	}

	var lastErr error

	for i, p := range s.providers {
		ident, err := p.TryAuthenticate(ctx, id, credential)
		if err == nil {
			authAttempts.WithLabelValues(string(p.Name()), outcomeSuccess).Inc()

			log.Info().Str("email", ident.Email).Str("provenance", string(ident.Provenance)).
				Str("role", string(ident.Role)).Msg("login succeeded")

			if ident.Provenance == identity.ProvenanceDirectory {
				s.scheduleSync(ctx, *ident)
			}

			return ident, nil
		}

		lastErr = err

		authAttempts.WithLabelValues(string(p.Name()), outcome(err)).Inc()

		if i < len(s.providers)-1 {
			event := log.Debug()
			if errors.Is(err, ErrDirectoryUnavailable) {
				event = log.Warn()
			}

			event.Err(err).Str("provider", string(p.Name())).Str("email", id).Msg("falling back to next identity provider")
		}
	}

	log.Info().Err(lastErr).Str("email", id).Msg("login failed")

	return nil, lastErr
}

func (s *Service) scheduleSync(ctx context.Context, ident identity.Identity) {
	if s.queue == nil {
		if err := s.syncer.Sync(ctx, ident); err != nil {
			log.Error().Err(err).Str("email", ident.Email).Msg("failed to sync directory identity to local store")
		}

		return
	}

	if err := s.queue.Enqueue(ctx, ident); err != nil {
		log.Error().Err(fmt.Errorf("%w: %w", ErrSyncFailure, err)).Str("email", ident.Email).
			Msg("failed to queue directory identity")
	}
}

// DirectoryConfig returns the current directory config.
func (s *Service) DirectoryConfig() directory.Config {
	return *s.cfg.Load()
}

// SetDirectoryConfig applies patch to the current config, validates and
// saves the result and publishes it. The previous value is never changed.
// A masked bind password in the patch keeps the stored one.
func (s *Service) SetDirectoryConfig(ctx context.Context, patch directory.Patch) (directory.Config, error) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	if patch.AdminPassword != nil && *patch.AdminPassword == directory.MaskedSecret {
		patch.AdminPassword = nil
	}

	next := s.DirectoryConfig().Apply(patch).WithDefaults()
	if err := next.Validate(); err != nil {
		return directory.Config{}, err
	}

	if s.db != nil {
		if err := setting.SaveJSON(ctx, s.db, DirectoryConfigSetting, next); err != nil {
			return directory.Config{}, fmt.Errorf("failed to save directory config: %w", err)
		}
	}

	s.cfg.Store(&next)

	log.Info().Bool("enabled", next.Enabled).Str("backend", next.Backend).Str("server", next.Server).
		Msg("directory config updated")

	return next, nil
}

// ConnectivityResult is the outcome of TestDirectoryConnectivity.
type ConnectivityResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// TestDirectoryConnectivity checks that the configured directory answers.
// It runs whether the integration is enabled or not.
func (s *Service) TestDirectoryConnectivity(ctx context.Context) ConnectivityResult {
	cfg := s.DirectoryConfig()

	ctx, cancel := context.WithTimeout(ctx, cfg.TimeoutDuration())
	defer cancel()

	dir, err := s.open(cfg)
	if err != nil {
		return ConnectivityResult{Message: fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err).Error()}
	}

	details, err := dir.Ping(ctx)
	if err != nil {
		log.Warn().Err(err).Str("server", cfg.Server).Msg("directory connectivity test failed")

		return ConnectivityResult{Message: fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err).Error()}
	}

	msg := "connected to " + cfg.Server
	if !cfg.Enabled {
		msg += " (integration disabled)"
	}

	return ConnectivityResult{Success: true, Message: msg, Details: details}
}

// ListDirectoryAccounts returns the directory accounts matching search.
func (s *Service) ListDirectoryAccounts(ctx context.Context, search string) ([]directory.Summary, error) {
	list, err := s.directoryAccounts(ctx, search)
	if err != nil {
		return nil, err
	}

	out := make([]directory.Summary, 0, len(list))
	for i := range list {
		out = append(out, list[i].Summarize())
	}

	return out, nil
}

// ResyncResult counts the outcome of ResyncAllDirectoryAccounts.
type ResyncResult struct {
	Synced int `json:"synced"`
	Errors int `json:"errors"`
}

// ResyncAllDirectoryAccounts copies every active directory account into the
// local store. Failures are counted and logged, not returned.
func (s *Service) ResyncAllDirectoryAccounts(ctx context.Context) (ResyncResult, error) {
	var res ResyncResult

	if !s.DirectoryConfig().Enabled {
		return res, ErrDirectoryDisabled
	}

	list, err := s.directoryAccounts(ctx, "")
	if err != nil {
		return res, err
	}

	for i := range list {
		if !list[i].Active {
			continue
		}

		if err = s.syncer.Sync(ctx, *s.dir.IdentityFor(&list[i])); err != nil {
			res.Errors++

			log.Error().Err(err).Str("email", list[i].Email).Msg("resync failed")

			continue
		}

		res.Synced++
	}

	log.Info().Int("synced", res.Synced).Int("errors", res.Errors).Msg("directory resync finished")

	return res, nil
}

func (s *Service) directoryAccounts(ctx context.Context, search string) ([]directory.Account, error) {
	cfg := s.DirectoryConfig()

	dir, err := s.open(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.TimeoutDuration())
	defer cancel()

	list, err := dir.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	return list, nil
}

// Groups returns the group mapping table used for directory identities.
func (s *Service) Groups() *groupmap.Table {
	return s.groups
}
