package views

import (
	"lendex/core"
)

// Metadata cms decoration, empty when the cms has nothing or is down
type Metadata struct {
	Name        string `json:"name,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// NewMetadata metadata view
func NewMetadata(m *core.DealMetadata) Metadata {
	if m == nil {
		return Metadata{}
	}

	return Metadata{
		Name:        m.Name,
		Category:    m.Category,
		Description: m.Description,
		Icon:        m.Icon,
	}
}

// CreditLine credit line with lateness computed at query time
type CreditLine struct {
	*core.CreditLine `json:",flatten"`
	IsLate           bool `json:"is_late"`
	IsInDefault      bool `json:"is_in_default"`
}

// NewCreditLine credit line view
func NewCreditLine(line *core.CreditLine, lateness *core.Lateness) *CreditLine {
	v := &CreditLine{CreditLine: line}
	if lateness != nil {
		v.IsLate = lateness.IsLate
		v.IsInDefault = lateness.IsInDefault
	}

	return v
}

// Pool tranched pool view
type Pool struct {
	*core.TranchedPool `json:",flatten"`
	Metadata           `json:",flatten"`
	CreditLineView     *CreditLine                `json:"credit_line_detail,omitempty"`
	Tranches           []*core.Tranche            `json:"tranches,omitempty"`
	Schedule           []*core.ScheduledRepayment `json:"schedule,omitempty"`
}

// CallableLoan callable loan view
type CallableLoan struct {
	*core.CallableLoan `json:",flatten"`
	Metadata           `json:",flatten"`
	Schedule           []*core.ScheduledRepayment `json:"schedule,omitempty"`
}

// WithdrawalRequest request with its disbursements
type WithdrawalRequest struct {
	*core.WithdrawalRequest `json:",flatten"`
	Disbursements           []*core.WithdrawalDisbursement `json:"disbursements"`
}
