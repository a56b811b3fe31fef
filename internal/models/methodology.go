package models

// MethodologyType identifies one of the allocation algorithms
type MethodologyType string

const (
	MethodologyZeroBased       MethodologyType = "zero_based"
	MethodologyPercentageBased MethodologyType = "percentage_based"
	MethodologyEnvelope        MethodologyType = "envelope"
)

// Valid reports whether t is a known methodology type.
func (t MethodologyType) Valid() bool {
	switch t {
	case MethodologyZeroBased, MethodologyPercentageBased, MethodologyEnvelope:
		return true
	}
	return false
}

// Bucket tags used by percentage based allocation
const (
	BucketNeeds   = "needs"
	BucketWants   = "wants"
	BucketSavings = "savings"
)

// MethodologyConfig is the typed configuration payload of a methodology.
// Fields apply only to the methodology type that reads them.
type MethodologyConfig struct {
	// percentage_based
	NeedsPercentage   *float64          `json:"needs_percentage,omitempty"`
	WantsPercentage   *float64          `json:"wants_percentage,omitempty"`
	SavingsPercentage *float64          `json:"savings_percentage,omitempty"`
	CategoryBuckets   map[string]string `json:"category_buckets,omitempty"`

	// envelope
	AllowEnvelopeTransfer bool     `json:"allow_envelope_transfer,omitempty"`
	RolloverUnused        bool     `json:"rollover_unused,omitempty"`
	MaxTransferPercentage *float64 `json:"max_transfer_percentage,omitempty"`

	// zero_based
	UnallocatedThreshold *float64 `json:"unallocated_threshold,omitempty"`
}

// Merge returns a copy of c with every field set in o taking precedence.
func (c MethodologyConfig) Merge(o *MethodologyConfig) MethodologyConfig {
	if o == nil {
		return c
	}
	out := c
	if o.NeedsPercentage != nil {
		out.NeedsPercentage = o.NeedsPercentage
	}
	if o.WantsPercentage != nil {
		out.WantsPercentage = o.WantsPercentage
	}
	if o.SavingsPercentage != nil {
		out.SavingsPercentage = o.SavingsPercentage
	}
	if len(o.CategoryBuckets) > 0 {
		buckets := make(map[string]string, len(c.CategoryBuckets)+len(o.CategoryBuckets))
		for k, v := range c.CategoryBuckets {
			buckets[k] = v
		}
		for k, v := range o.CategoryBuckets {
			buckets[k] = v
		}
		out.CategoryBuckets = buckets
	}
	if o.AllowEnvelopeTransfer {
		out.AllowEnvelopeTransfer = true
	}
	if o.RolloverUnused {
		out.RolloverUnused = true
	}
	if o.MaxTransferPercentage != nil {
		out.MaxTransferPercentage = o.MaxTransferPercentage
	}
	if o.UnallocatedThreshold != nil {
		out.UnallocatedThreshold = o.UnallocatedThreshold
	}
	return out
}

// BudgetMethodology is a named allocation strategy. Exactly one is active.
type BudgetMethodology struct {
	Base
	Name            string            `gorm:"not null;index" json:"name"`
	Description     string            `json:"description"`
	MethodologyType MethodologyType   `gorm:"not null" json:"methodology_type"`
	IsActive        bool              `gorm:"not null;default:false" json:"is_active"`
	IsDefault       bool              `gorm:"not null;default:false" json:"is_default"`
	Configuration   MethodologyConfig `gorm:"type:text;serializer:json" json:"configuration"`
}
