// Package coordinator implements the fetch coordinator: it owns credential
// and plan state, decides when hourly and daily fetches are due, applies the
// rate-limit cool-down, and assembles the combined current/hourly/daily
// result consumed by the API layer.
//
// One logical refresh runs at a time. Timer-driven and on-demand refreshes
// funnel through the same singleflight entry point, so a trigger arriving
// while a cycle is in flight shares that cycle's result instead of starting
// a second one. The result of cycle N is fully applied, or the cycle fully
// failed, before cycle N+1 begins.
package coordinator

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"meteopoll/internal/meteomatics"
	"meteopoll/internal/types"
)

// RateLimitCoolDown is how long outgoing fetches are suspended after the
// upstream returns 429. The cool-down is the only self-managed backoff; all
// other retry policy belongs to the refresh cadence.
const RateLimitCoolDown = time.Hour

// basicDailyFetchHours are the local hours of day at which the basic plan is
// allowed a fresh daily fetch. Between boundaries the cached daily slice is
// reused and re-derived against the latest hourly data.
var basicDailyFetchHours = []int{3, 9, 15, 21}

// defaultMaxConcurrentFetches bounds parallel chunk requests per cycle.
const defaultMaxConcurrentFetches = 4

// Fetcher abstracts the upstream client. Credentials are passed per call
// because the coordinator can rotate them at runtime.
type Fetcher interface {
	Fetch(ctx context.Context, creds types.Credentials, timeRange string, parameters []string) (map[string]types.TimeSeries, error)
}

// Config holds the construction parameters for a Coordinator.
type Config struct {
	Fetcher            Fetcher
	Credentials        types.Credentials
	Plan               types.PlanTier
	OptionalParameters []string
	Location           *time.Location

	// ChunkLimit overrides the provider's per-request parameter cap. Zero
	// means meteomatics.MaxParametersPerRequest.
	ChunkLimit int
	// MaxConcurrentFetches bounds parallel chunk requests. Zero means the
	// package default.
	MaxConcurrentFetches int

	Logger *slog.Logger
	// Now overrides the wall clock. Zero value means time.Now.
	Now func() time.Time
}

// Status reports the coordinator's refresh health for the health endpoint.
type Status struct {
	Plan          types.PlanTier `json:"plan_type"`
	LastSuccess   time.Time      `json:"last_success,omitzero"`
	LastError     string         `json:"last_error,omitempty"`
	CoolDownUntil time.Time      `json:"cool_down_until,omitzero"`
}

// Coordinator drives the refresh cycle for one configured installation.
// All mutable state is guarded by mu; refreshes and update calls are the
// only writers.
type Coordinator struct {
	fetcher       Fetcher
	loc           *time.Location
	chunkLimit    int
	maxConcurrent int
	logger        *slog.Logger
	now           func() time.Time

	flight singleflight.Group

	mu       sync.Mutex
	creds    types.Credentials
	plan     types.PlanTier
	optional []string

	rateLimitResetAt time.Time

	// Daily cache: raw fetched daily series plus the next boundary at which
	// the basic plan must fetch fresh. Entries are rebuilt from the cache on
	// every cycle so they track the latest hourly data.
	dailySeries    map[string]types.TimeSeries
	nextDailyFetch time.Time

	// Latest parsed hourly series, retained to support daily derivation.
	hourlySeries map[string]types.TimeSeries

	latest      *types.WeatherData
	lastSuccess time.Time
	lastErr     error
}

// New creates a Coordinator with the given configuration.
func New(cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	chunkLimit := cfg.ChunkLimit
	if chunkLimit <= 0 {
		chunkLimit = meteomatics.MaxParametersPerRequest
	}
	maxConcurrent := cfg.MaxConcurrentFetches
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentFetches
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		fetcher:       cfg.Fetcher,
		loc:           loc,
		chunkLimit:    chunkLimit,
		maxConcurrent: maxConcurrent,
		logger:        logger,
		now:           now,
		creds:         cfg.Credentials,
		plan:          cfg.Plan,
		optional:      slices.Clone(cfg.OptionalParameters),
	}
}

// Refresh runs one full refresh cycle and returns the assembled result.
// Concurrent callers are coalesced: a refresh triggered while one is in
// flight shares the in-flight cycle's outcome.
func (c *Coordinator) Refresh(ctx context.Context) (*types.WeatherData, error) {
	v, err, _ := c.flight.Do("refresh", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.WeatherData), nil
}

// Latest returns the last successful result. The second return is false
// until the first cycle succeeds.
func (c *Coordinator) Latest() (*types.WeatherData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return nil, false
	}
	return c.latest, true
}

// Status reports the refresh health.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{
		Plan:          c.plan,
		LastSuccess:   c.lastSuccess,
		CoolDownUntil: c.rateLimitResetAt,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// UpdateCredentials rotates the upstream credentials. Rotation clears the
// rate-limit cool-down, since new credentials may not share the old limiter
// state, but leaves cached daily data intact. Reports whether anything
// changed.
func (c *Coordinator) UpdateCredentials(username, password string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.creds.Username == username && c.creds.Password.Unmask() == password {
		return false
	}
	c.creds = types.Credentials{
		Username: username,
		Password: types.SecretString(password),
	}
	c.rateLimitResetAt = time.Time{}
	c.logger.Info("upstream credentials rotated", "username", username)
	return true
}

// UpdatePlan switches the plan tier and optional parameter selection. Since
// the fetch shape changes entirely, the daily cache, its schedule, and the
// rate-limit cool-down are all reset. Reports whether anything changed.
func (c *Coordinator) UpdatePlan(plan types.PlanTier, optional []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.plan == plan && slices.Equal(c.optional, optional) {
		return false
	}
	c.plan = plan
	c.optional = slices.Clone(optional)
	c.dailySeries = nil
	c.nextDailyFetch = time.Time{}
	c.rateLimitResetAt = time.Time{}
	c.logger.Info("plan updated",
		"plan_type", string(plan),
		"optional_parameters", len(optional),
	)
	return true
}

// refresh is the single-writer cycle body. State is snapshotted under the
// lock, the network legs run unlocked so Latest and Status stay instant
// during a cycle, and the outcome is applied under the lock again.
// Singleflight guarantees only one cycle body runs at a time, so the apply
// step never races another cycle.
func (c *Coordinator) refresh(ctx context.Context) (*types.WeatherData, error) {
	c.mu.Lock()
	now := c.now().In(c.loc)

	// Step 1: cool-down check. While the reset time is in the future the
	// cycle fails fast with zero network calls.
	if !c.rateLimitResetAt.IsZero() && now.Before(c.rateLimitResetAt) {
		err := types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamRateLimited,
			"rate limit cool-down active",
			nil,
			map[string]any{"retry_at": c.rateLimitResetAt.Format(time.RFC3339)},
		)
		c.lastErr = err
		retryAt := c.rateLimitResetAt.Format(time.RFC3339)
		c.mu.Unlock()
		c.logger.WarnContext(ctx, "refresh skipped during cool-down",
			"retry_at", retryAt,
		)
		return nil, err
	}

	creds := c.creds
	plan := c.plan
	optional := slices.Clone(c.optional)
	dailySeries := c.dailySeries
	nextDailyFetch := c.nextDailyFetch
	c.mu.Unlock()

	// Step 2: hourly fetch.
	hourly, err := c.fetchChunked(ctx, creds,
		meteomatics.HourlyRange(now, c.loc),
		meteomatics.HourlyParameters(plan, optional),
	)
	if err != nil {
		return nil, c.recordFailure(ctx, now, "hourly", err)
	}

	idx := buildConditionIndex(hourly[meteomatics.ParamSymbol1h])
	current := buildCurrent(hourly, meteomatics.TruncateHour(now), idx)
	hourlyEntries := buildHourly(hourly, idx)

	// Step 3: ensure daily data. PaidTrial always fetches fresh; Basic only
	// when no cache exists or the next scheduled boundary has passed.
	if dailyFetchDue(plan, dailySeries, nextDailyFetch, now) {
		daily, err := c.fetchChunked(ctx, creds,
			meteomatics.DailyRange(now, c.loc),
			meteomatics.DailyParameters(plan, optional),
		)
		if err != nil {
			return nil, c.recordFailure(ctx, now, "daily", err)
		}
		dailySeries = daily
		if plan == types.PlanBasic {
			nextDailyFetch = nextDailyFetchTime(now)
		} else {
			nextDailyFetch = time.Time{}
		}
	} else {
		c.logger.DebugContext(ctx, "reusing cached daily data",
			"next_daily_fetch", nextDailyFetch.Format(time.RFC3339),
		)
	}

	// Daily entries are rebuilt every cycle, fetched or cached, so condition
	// inference and high/low derivation always track the fresh hourly series.
	dailyEntries := buildDaily(dailySeries, hourly, c.loc)

	// Step 4: apply the cycle wholesale; success clears any rate-limit state.
	data := &types.WeatherData{
		Current:   current,
		Hourly:    hourlyEntries,
		Daily:     dailyEntries,
		FetchedAt: now,
	}

	c.mu.Lock()
	c.hourlySeries = hourly
	c.dailySeries = dailySeries
	c.nextDailyFetch = nextDailyFetch
	c.rateLimitResetAt = time.Time{}
	c.latest = data
	c.lastSuccess = now
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "refresh cycle complete",
		"hourly_entries", len(hourlyEntries),
		"daily_entries", len(dailyEntries),
	)
	return data, nil
}

// dailyFetchDue reports whether this cycle must fetch daily data fresh.
func dailyFetchDue(plan types.PlanTier, cached map[string]types.TimeSeries, next, now time.Time) bool {
	if plan != types.PlanBasic {
		return true
	}
	if cached == nil {
		return true
	}
	return !now.Before(next)
}

// fetchChunked splits the parameter list under the provider cap, fetches the
// chunks with a bounded errgroup, and merges the parsed results in chunk
// order. Any chunk failure fails the whole fetch; there is no partial
// success within a cycle.
func (c *Coordinator) fetchChunked(ctx context.Context, creds types.Credentials, timeRange string, parameters []string) (map[string]types.TimeSeries, error) {
	chunks := meteomatics.ChunkParameters(parameters, c.chunkLimit)
	switch len(chunks) {
	case 0:
		return map[string]types.TimeSeries{}, nil
	case 1:
		return c.fetcher.Fetch(ctx, creds, timeRange, chunks[0])
	}

	results := make([]map[string]types.TimeSeries, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			parsed, err := c.fetcher.Fetch(gctx, creds, timeRange, chunk)
			if err != nil {
				return err
			}
			results[i] = parsed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]types.TimeSeries, len(parameters))
	for _, parsed := range results {
		for param, series := range parsed {
			merged[param] = series
		}
	}
	return merged, nil
}

// recordFailure notes the cycle's failure and, for a rate-limited upstream,
// starts the cool-down. Prior successful data stays readable as the
// last-known-good state.
func (c *Coordinator) recordFailure(ctx context.Context, now time.Time, leg string, err error) error {
	c.mu.Lock()
	c.lastErr = err
	rateLimited := types.IsRateLimited(err)
	if rateLimited {
		c.rateLimitResetAt = now.Add(RateLimitCoolDown)
	}
	retryAt := c.rateLimitResetAt
	c.mu.Unlock()

	if rateLimited {
		c.logger.WarnContext(ctx, "upstream rate limited; starting cool-down",
			"leg", leg,
			"retry_at", retryAt.Format(time.RFC3339),
		)
		return err
	}
	c.logger.ErrorContext(ctx, "refresh cycle failed",
		"leg", leg,
		"error", err,
	)
	return err
}

// nextDailyFetchTime picks the smallest configured fetch hour strictly after
// now; when none remains today it rolls to the first hour tomorrow.
func nextDailyFetchTime(now time.Time) time.Time {
	for _, h := range basicDailyFetchHours {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
		if candidate.After(now) {
			return candidate
		}
	}
	next := now.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), basicDailyFetchHours[0], 0, 0, 0, now.Location())
}
