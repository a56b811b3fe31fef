package engine

import "budgetwise/internal/models"

func pct(v float64) *float64 { return &v }

// DefaultMethodologies is the catalog seeded into an empty store. Zero-Based
// starts active.
func DefaultMethodologies() []models.BudgetMethodology {
	split := func(name, desc string, needs, wants, savings float64) models.BudgetMethodology {
		return models.BudgetMethodology{
			Name:            name,
			Description:     desc,
			MethodologyType: models.MethodologyPercentageBased,
			IsDefault:       true,
			Configuration: models.MethodologyConfig{
				NeedsPercentage:   pct(needs),
				WantsPercentage:   pct(wants),
				SavingsPercentage: pct(savings),
			},
		}
	}
	return []models.BudgetMethodology{
		{
			Name:            "Zero-Based Budgeting",
			Description:     "Every dollar of income is assigned to a category, most important first.",
			MethodologyType: models.MethodologyZeroBased,
			IsActive:        true,
			IsDefault:       true,
			Configuration:   models.MethodologyConfig{UnallocatedThreshold: pct(defaultUnallocatedThreshold)},
		},
		split("50/30/20 Rule", "50% needs, 30% wants, 20% savings.", 50, 30, 20),
		split("60/20/20 Rule", "60% needs, 20% wants, 20% savings for higher fixed costs.", 60, 20, 20),
		split("70/20/10 Rule", "70% needs, 20% savings, 10% wants for tight budgets.", 70, 10, 20),
		{
			Name:            "Envelope Method",
			Description:     "Each category gets a fixed envelope; spending stops when it is empty.",
			MethodologyType: models.MethodologyEnvelope,
			IsDefault:       true,
		},
		{
			Name:            "Flexible Envelope",
			Description:     "Envelopes with transfers from under-used categories and rollover of unused funds.",
			MethodologyType: models.MethodologyEnvelope,
			IsDefault:       true,
			Configuration: models.MethodologyConfig{
				AllowEnvelopeTransfer: true,
				RolloverUnused:        true,
				MaxTransferPercentage: pct(defaultMaxTransferPercentage),
			},
		},
	}
}
