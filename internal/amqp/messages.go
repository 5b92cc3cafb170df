package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"insighthunter/internal/core"

	"github.com/shopspring/decimal"
)

// ReportGeneratedMessage carries a complete report so consumers never need to
// read it back from the store.
type ReportGeneratedMessage struct {
	ReportID    string          `json:"reportId"`
	CompanyID   string          `json:"companyId"`
	PeriodStart string          `json:"periodStart"`
	PeriodEnd   string          `json:"periodEnd"`
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	GrossProfit decimal.Decimal `json:"grossProfit"`
	Opex        decimal.Decimal `json:"opex"`
	NetIncome   decimal.Decimal `json:"netIncome"`
	CreatedAt   time.Time       `json:"createdAt"`
	Timestamp   time.Time       `json:"timestamp"`
}

func NewReportGeneratedMessage(r core.Report) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		ReportID:    r.ID,
		CompanyID:   r.CompanyID,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		Revenue:     r.Revenue,
		COGS:        r.COGS,
		GrossProfit: r.GrossProfit,
		Opex:        r.Opex,
		NetIncome:   r.NetIncome,
		CreatedAt:   r.CreatedAt,
		Timestamp:   time.Now(),
	}
}

// Report converts the message back into the domain type.
func (m *ReportGeneratedMessage) Report() core.Report {
	return core.Report{
		ID:          m.ReportID,
		CompanyID:   m.CompanyID,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		Revenue:     m.Revenue,
		COGS:        m.COGS,
		GrossProfit: m.GrossProfit,
		Opex:        m.Opex,
		NetIncome:   m.NetIncome,
		CreatedAt:   m.CreatedAt,
	}
}

func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportGeneratedMessageFromJSON decodes a message body. A body without a
// report id is rejected.
func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ReportID == "" {
		return nil, fmt.Errorf("message has no report id")
	}
	return &msg, nil
}
