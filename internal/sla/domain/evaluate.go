package domain

import (
	"time"

	"github.com/shopspring/decimal"

	ticketdomain "github.com/billablehq/billable/internal/ticket/domain"
)

// Class is the compliance classification of one SLA dimension.
type Class string

const (
	ClassCompliant     Class = "compliant"
	ClassAtRisk        Class = "at_risk"
	ClassBreached      Class = "breached"
	ClassNotApplicable Class = "n_a"
)

// worse orders classes so the overall ticket status can take the maximum.
var classRank = map[Class]int{
	ClassNotApplicable: 0,
	ClassCompliant:     1,
	ClassAtRisk:        2,
	ClassBreached:      3,
}

func worse(a, b Class) Class {
	if classRank[b] > classRank[a] {
		return b
	}
	return a
}

// DimensionStatus is the evaluation of one threshold (response or
// resolution) for one ticket.
type DimensionStatus struct {
	Class          Class            `json:"class"`
	ThresholdHours *decimal.Decimal `json:"threshold_hours"`
	ElapsedHours   decimal.Decimal  `json:"elapsed_hours"`
	Progress       decimal.Decimal  `json:"progress"`
}

// TicketStatus is the full SLA evaluation of one ticket.
type TicketStatus struct {
	TicketID   int64                 `json:"ticket_id,string"`
	Title      string                `json:"title"`
	Priority   ticketdomain.Priority `json:"priority"`
	RuleID     *int64                `json:"rule_id,string"`
	Response   DimensionStatus       `json:"response"`
	Resolution DimensionStatus       `json:"resolution"`
	Overall    Class                 `json:"overall"`
}

var (
	atRiskFloor   = decimal.NewFromInt(80)
	breachedFloor = decimal.NewFromInt(100)
	hundred       = decimal.NewFromInt(100)
)

func classify(progress decimal.Decimal) Class {
	switch {
	case progress.GreaterThanOrEqual(breachedFloor):
		return ClassBreached
	case progress.GreaterThanOrEqual(atRiskFloor):
		return ClassAtRisk
	default:
		return ClassCompliant
	}
}

// evaluateDimension measures elapsed time against a threshold. A non-nil
// doneAt freezes the clock at the moment the dimension was satisfied, so a
// ticket answered inside its window stays compliant forever after.
func evaluateDimension(createdAt time.Time, doneAt *time.Time, threshold *decimal.Decimal, now time.Time) DimensionStatus {
	if threshold == nil || threshold.LessThanOrEqual(decimal.Zero) {
		return DimensionStatus{Class: ClassNotApplicable}
	}

	end := now
	if doneAt != nil {
		end = *doneAt
	}
	elapsed := decimal.NewFromFloat(end.Sub(createdAt).Hours()).Round(4)
	if elapsed.IsNegative() {
		elapsed = decimal.Zero
	}

	progress := elapsed.Div(*threshold).Mul(hundred).Round(2)
	if progress.GreaterThan(hundred) {
		progress = hundred
	}

	return DimensionStatus{
		Class:          classify(progress),
		ThresholdHours: threshold,
		ElapsedHours:   elapsed,
		Progress:       progress,
	}
}

// Evaluate computes SLA status for one ticket against its matched rule, as a
// pure function of (ticket, rule, now). A nil rule yields n_a on both
// dimensions.
func Evaluate(ticket ticketdomain.Ticket, rule *SLARule, now time.Time) TicketStatus {
	status := TicketStatus{
		TicketID:   ticket.ID.Int64(),
		Title:      ticket.Title,
		Priority:   ticket.Priority,
		Response:   DimensionStatus{Class: ClassNotApplicable},
		Resolution: DimensionStatus{Class: ClassNotApplicable},
		Overall:    ClassNotApplicable,
	}
	if rule == nil {
		return status
	}

	ruleID := rule.ID.Int64()
	status.RuleID = &ruleID
	status.Response = evaluateDimension(ticket.CreatedAt, ticket.FirstResponseAt, rule.ResponseTimeHours, now)
	status.Resolution = evaluateDimension(ticket.CreatedAt, ticket.ResolvedAt, rule.ResolutionTimeHours, now)
	status.Overall = worse(status.Response.Class, status.Resolution.Class)
	return status
}

// MatchRule picks the most specific rule for a ticket: a client-specific rule
// for the ticket's priority beats the tenant-wide default for that priority.
func MatchRule(rules []SLARule, clientID int64, priority ticketdomain.Priority) *SLARule {
	var fallback *SLARule
	for i := range rules {
		rule := &rules[i]
		if rule.Priority != priority {
			continue
		}
		if rule.ClientID != nil {
			if rule.ClientID.Int64() == clientID {
				return rule
			}
			continue
		}
		if fallback == nil {
			fallback = rule
		}
	}
	return fallback
}
