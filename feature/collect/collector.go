package collect

import (
	"fmt"

	"krosmoz-scrapper/core/utils"
	"krosmoz-scrapper/feature/alias"
	"krosmoz-scrapper/feature/limits"

	"go.uber.org/zap"
)

// DefaultFallbackCap bounds entities without a configured cap.
const DefaultFallbackCap = 1000

// Options controls one collection run.
type Options struct {
	// PageSize is the requested page size; it is reduced to PageLimit.
	PageSize int
	// Max lowers the entity cap for this run when positive.
	Max int
	// Fallback is the cap for entities the policy does not know. Zero means DefaultFallbackCap.
	Fallback int
}

// Collector fetches paginated record sets from registered remotes.
type Collector struct {
	remotes map[string]Remote
	policy  limits.Policy
	logger  *zap.Logger
}

// NewCollector creates a collector bounded by policy.
func NewCollector(policy limits.Policy, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		remotes: make(map[string]Remote),
		policy:  policy,
		logger:  logger,
	}
}

// Register makes remote available for aliases whose source is name.
func (c *Collector) Register(name string, remote Remote) {
	c.remotes[utils.NormalizeKey(name)] = remote
}

// Collect prepares a cursor over the alias' remote records. No request is made
// until the first NextPage call.
func (c *Collector) Collect(a alias.CollectAlias, opts Options) (*Cursor, error) {
	remote, ok := c.remotes[utils.NormalizeKey(a.Source)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, a.Source)
	}

	fallback := opts.Fallback
	if fallback <= 0 {
		fallback = DefaultFallbackCap
	}
	limit := c.policy.CapFor(a.Entity, fallback)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
	}

	cur := &Cursor{
		remote:   remote,
		source:   a.Source,
		entity:   a.Entity,
		filter:   a.Filter(),
		pageSize: EffectivePageSize(opts.PageSize),
		limit:    limit,
		logger:   c.logger.With(zap.String("source", a.Source), zap.String("entity", a.Entity)),
	}

	cur.logger.Debug("Collection planned",
		zap.Int("requested_page_size", opts.PageSize),
		zap.Int("page_size", cur.pageSize),
		zap.Int("cap", cur.limit),
		zap.Int("planned_pages", cur.PlannedPages()))

	return cur, nil
}
