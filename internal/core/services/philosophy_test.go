package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"model-governance-service/internal/core/domain"
	"model-governance-service/internal/testutil"
)

func orgPhilosophy() *domain.GovernancePhilosophy {
	return &domain.GovernancePhilosophy{
		Scope:               domain.ScopeOrg,
		ScopeRef:            domain.OrgScopeRef,
		RiskAppetite:        "Low appetite for unexplained pricing decisions.",
		LifecycleGovernance: "Models are revalidated annually.",
	}
}

func TestPhilosophyService_Upsert(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.philosophy.Upsert(ctx, "cco@carrier.com", orgPhilosophy(), false)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.GeneratedByLLM)

	revised := orgPhilosophy()
	revised.RiskAppetite = "Moderate appetite with documented exceptions."
	updated, err := env.philosophy.Upsert(ctx, "cco@carrier.com", revised, false)
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	got, err := env.philosophy.Get(ctx, domain.ScopeKey{Scope: domain.ScopeOrg, ScopeRef: domain.OrgScopeRef})
	require.NoError(t, err)
	assert.Equal(t, revised.RiskAppetite, got.RiskAppetite)

	entries, err := env.audit.List(ctx, domain.AuditFilter{EntityType: domain.EntityPhilosophy})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionUpdatePhilosophy, entries[0].ActionType)
	assert.Equal(t, domain.ActionCreatePhilosophy, entries[1].ActionType)
	assert.Equal(t, "org_enterprise", entries[0].EntityID)
	assert.JSONEq(t, `"Moderate appetite with documented exceptions."`, string(mustField(t, entries[0].NewValue, "risk_appetite")))
}

func TestPhilosophyService_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.philosophy.Replace(ctx, "", orgPhilosophy(), false)
	assert.ErrorIs(t, err, domain.ErrPhilosophyNotFound)

	_, err = env.philosophy.Upsert(ctx, "", &domain.GovernancePhilosophy{Scope: "galaxy", ScopeRef: "x"}, false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.philosophy.Upsert(ctx, "", &domain.GovernancePhilosophy{Scope: domain.ScopeOrg}, false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.philosophy.List(ctx, "galaxy", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.ErrorIs(t, env.philosophy.Delete(ctx, "", domain.ScopeKey{Scope: domain.ScopeOrg, ScopeRef: "nope"}), domain.ErrPhilosophyNotFound)
	assert.Zero(t, auditCount(t, env))
}

func TestPhilosophyService_Delete(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	_, err := env.philosophy.Upsert(ctx, "", orgPhilosophy(), false)
	require.NoError(t, err)

	key := domain.ScopeKey{Scope: domain.ScopeOrg, ScopeRef: domain.OrgScopeRef}
	require.NoError(t, env.philosophy.Delete(ctx, "cco@carrier.com", key))

	_, err = env.philosophy.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrPhilosophyNotFound)
	list, err := env.philosophy.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, list)

	entries, err := env.audit.List(ctx, domain.AuditFilter{ActionType: domain.ActionDeletePhilosophy})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].NewValue)
	assert.NotEmpty(t, entries[0].OldValue)
}

func TestPhilosophyService_ModelScopeAuditFiltersByModel(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := env.register(t, nil)

	_, err := env.philosophy.Upsert(ctx, "", orgPhilosophy(), false)
	require.NoError(t, err)
	doc := &domain.GovernancePhilosophy{
		Scope:        domain.ScopeModel,
		ScopeRef:     m.ID,
		RiskAppetite: "Pricing overrides need a second reviewer.",
	}
	_, err = env.philosophy.Upsert(ctx, "", doc, false)
	require.NoError(t, err)
	doc.RiskAppetite = "Pricing overrides need two reviewers."
	_, err = env.philosophy.Upsert(ctx, "", doc, false)
	require.NoError(t, err)
	require.NoError(t, env.philosophy.Delete(ctx, "", doc.Key()))

	entries, err := env.audit.List(ctx, domain.AuditFilter{ModelID: m.ID, EntityType: domain.EntityPhilosophy})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.ActionDeletePhilosophy, entries[0].ActionType)
	assert.Equal(t, domain.ActionUpdatePhilosophy, entries[1].ActionType)
	assert.Equal(t, domain.ActionCreatePhilosophy, entries[2].ActionType)
	for _, e := range entries {
		assert.Equal(t, m.ID, e.ModelID)
	}

	org, err := env.audit.List(ctx, domain.AuditFilter{ActionType: domain.ActionCreatePhilosophy})
	require.NoError(t, err)
	require.Len(t, org, 2)
	assert.Empty(t, org[1].ModelID)
}

func TestPhilosophyService_ResolveForModel(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := env.register(t, nil)

	_, err := env.philosophy.Upsert(ctx, "", orgPhilosophy(), false)
	require.NoError(t, err)
	_, err = env.philosophy.Upsert(ctx, "", &domain.GovernancePhilosophy{
		Scope:        domain.ScopeLineOfBusiness,
		ScopeRef:     string(domain.LineOfBusinessPersonalAuto),
		RiskAppetite: "Auto pricing changes need actuarial sign-off.",
	}, false)
	require.NoError(t, err)
	_, err = env.philosophy.Upsert(ctx, "", &domain.GovernancePhilosophy{
		Scope:    domain.ScopeModel,
		ScopeRef: m.ID,
		FairnessAndUnfairDiscriminationPrinciples: "Territory factors are tested for proxy effects quarterly.",
	}, false)
	require.NoError(t, err)

	resolved, err := env.philosophy.ResolveForModel(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, resolved.Sections, len(domain.PhilosophySections))

	bySection := map[string]domain.ResolvedSection{}
	for _, s := range resolved.Sections {
		bySection[s.Key] = s
	}
	assert.Equal(t, domain.ScopeLineOfBusiness, bySection["risk_appetite"].SourceScope)
	assert.Equal(t, "Auto pricing changes need actuarial sign-off.", bySection["risk_appetite"].Text)
	assert.Equal(t, domain.ScopeModel, bySection["fairness_and_unfair_discrimination_principles"].SourceScope)
	assert.Equal(t, domain.ScopeOrg, bySection["lifecycle_governance"].SourceScope)
	assert.Empty(t, bySection["external_data_and_vendor_controls"].Text)
	assert.Len(t, resolved.Sources, 3)

	_, err = env.philosophy.ResolveForModel(ctx, "model_missing")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestPhilosophyService_FillGaps(t *testing.T) {
	completer := new(testutil.MockTextCompleter)
	completer.On("Complete", mock.Anything, philosophySystemPrompt, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, `"Lifecycle Governance"`)
	})).Return("", errors.New("upstream timeout")).Once()
	completer.On("Complete", mock.Anything, philosophySystemPrompt, mock.Anything).Return("Drafted guidance.", nil)

	env := newTestEnv(t, completer)
	p := &domain.GovernancePhilosophy{
		Scope:        domain.ScopeBusinessDomain,
		ScopeRef:     string(domain.BusinessDomainPCPersonal),
		RiskAppetite: "Written by hand.",
	}

	saved, err := env.philosophy.Upsert(context.Background(), "cco@carrier.com", p, true)
	require.NoError(t, err)

	assert.True(t, saved.GeneratedByLLM)
	assert.Equal(t, "Written by hand.", saved.RiskAppetite)
	assert.Equal(t, "Drafted guidance.", saved.RegulatoryAlignmentPrinciples)
	assert.Empty(t, saved.LifecycleGovernance)
	assert.Empty(t, p.RegulatoryAlignmentPrinciples, "input is not modified")
	completer.AssertNumberOfCalls(t, "Complete", 7)
}

func TestPhilosophyService_FillGapsWithoutCompleter(t *testing.T) {
	env := newTestEnv(t, nil)

	saved, err := env.philosophy.Upsert(context.Background(), "", orgPhilosophy(), true)
	require.NoError(t, err)
	assert.False(t, saved.GeneratedByLLM)
	assert.Empty(t, saved.RegulatoryAlignmentPrinciples)
}

func TestPhilosophyPrompt(t *testing.T) {
	p := orgPhilosophy()
	for _, section := range domain.PhilosophySections {
		prompt := philosophyPrompt(p, section)
		assert.Contains(t, prompt, section.Title)
		assert.Contains(t, prompt, "org (enterprise)")
		assert.NotEmpty(t, sectionFocus[section.Key], section.Key)
	}
}
