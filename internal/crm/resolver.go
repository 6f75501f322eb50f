// Package crm classifies meeting participants against the customer and lead
// registries.
package crm

import (
	"context"
	"log/slog"

	"meetbot/internal/domain"
)

// Resolver looks a participant up in registries, in priority order. The
// customer registry is always consulted before the lead registry, and within
// a registry a domain match is tried before an exact email match, so a paying
// customer classification can never be shadowed by a lead one.
type Resolver struct {
	registries []domain.Registry
	logger     *slog.Logger
}

func NewResolver(customers, leads domain.Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		registries: []domain.Registry{customers, leads},
		logger:     logger,
	}
}

// Resolve implements domain.OrganizationResolver. Registry failures degrade:
// they are logged and the next lookup proceeds, because organization context
// is enrichment, not a scheduling prerequisite. No match in any registry is a
// valid unknown classification, not an error.
func (r *Resolver) Resolve(ctx context.Context, email string) domain.OrganizationMatch {
	emailDomain := domain.EmailDomain(email)

	for _, reg := range r.registries {
		if reg == nil {
			continue
		}

		if emailDomain != "" {
			ref, err := reg.FindByDomain(ctx, emailDomain)
			if err != nil {
				r.degrade(reg, err)
			} else if ref != "" {
				r.logger.Info("participant resolved", "kind", reg.Kind(), "by", "domain", "ref", ref)
				return domain.OrganizationMatch{Kind: reg.Kind(), RecordRef: ref}
			}
		}

		ref, err := reg.FindByEmail(ctx, email)
		if err != nil {
			r.degrade(reg, err)
			continue
		}
		if ref != "" {
			r.logger.Info("participant resolved", "kind", reg.Kind(), "by", "email", "ref", ref)
			return domain.OrganizationMatch{Kind: reg.Kind(), RecordRef: ref}
		}
	}

	r.logger.Info("participant not found in any registry", "domain", emailDomain)
	return domain.OrganizationMatch{Kind: domain.MatchUnknown}
}

func (r *Resolver) degrade(reg domain.Registry, err error) {
	degraded := &domain.ResolutionDegraded{Registry: reg.Kind(), Err: err}
	r.logger.Warn("registry lookup failed, continuing without it", "registry", reg.Kind(), "err", degraded)
}
