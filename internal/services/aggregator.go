package services

import (
	"fmt"
	"time"

	"github.com/dmorhart/fieldforce/internal/models"
	"github.com/shopspring/decimal"
)

const (
	ShapeIndividual   = "individual"
	ShapeTeam         = "team"
	ShapeOrganization = "organization"
)

const (
	RelationManager        = "Manager"
	RelationDirectReport   = "Direct Report"
	RelationIndirectReport = "Indirect Report"
)

// ActivityTotals accumulates the integer counters of activity records.
// Monetary amounts stay in cents until a report row is shaped.
type ActivityTotals struct {
	Contacts            int64 `json:"contacts"`
	Appointments        int64 `json:"appointments"`
	Presentations       int64 `json:"presentations"`
	Referrals           int64 `json:"referrals"`
	Testimonials        int64 `json:"testimonials"`
	Sales               int64 `json:"sales"`
	NewFaceSold         int64 `json:"new_face_sold"`
	FactFinders         int64 `json:"fact_finders"`
	PremiumCents        int64 `json:"-"`
	BankersPremiumCents int64 `json:"-"`
}

func (totals *ActivityTotals) addRecord(record models.ActivityRecord) {
	totals.Contacts += record.Contacts
	totals.Appointments += record.Appointments
	totals.Presentations += record.Presentations
	totals.Referrals += record.Referrals
	totals.Testimonials += record.Testimonials
	totals.Sales += record.Sales
	totals.NewFaceSold += record.NewFaceSold
	totals.FactFinders += record.FactFinders
	totals.PremiumCents += record.PremiumCents
	totals.BankersPremiumCents += record.BankersPremiumCents
}

func (totals *ActivityTotals) merge(other ActivityTotals) {
	totals.Contacts += other.Contacts
	totals.Appointments += other.Appointments
	totals.Presentations += other.Presentations
	totals.Referrals += other.Referrals
	totals.Testimonials += other.Testimonials
	totals.Sales += other.Sales
	totals.NewFaceSold += other.NewFaceSold
	totals.FactFinders += other.FactFinders
	totals.PremiumCents += other.PremiumCents
	totals.BankersPremiumCents += other.BankersPremiumCents
}

// FormatCents renders integer cents as an exact two-decimal amount.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ReportRow is one line of an aggregated report. Premium amounts are
// formatted at this edge only; all accumulation happens in cents.
type ReportRow struct {
	UserID         uint           `json:"user_id"`
	Name           string         `json:"name"`
	Role           string         `json:"role"`
	Relation       string         `json:"relation,omitempty"`
	Totals         ActivityTotals `json:"totals"`
	Premium        string         `json:"premium"`
	BankersPremium string         `json:"bankers_premium"`
}

type Report struct {
	Shape  string      `json:"shape"`
	Window DateRange   `json:"window"`
	Rows   []ReportRow `json:"rows"`
}

// AggregatorActivityReader is the read-only slice of the store the
// aggregator depends on.
type AggregatorActivityReader interface {
	ListByUsersInRange(userIDs []uint, from time.Time, to time.Time) ([]models.ActivityRecord, error)
}

type Aggregator struct {
	activities AggregatorActivityReader
}

func NewAggregator(activities AggregatorActivityReader) *Aggregator {
	return &Aggregator{activities: activities}
}

// Aggregate sums member activity across the subtree under root for the
// inclusive window and shapes the result. Members with no matching records
// still get all-zero rows: absence of activity is a reportable fact.
func (aggregator *Aggregator) Aggregate(root *HierarchyNode, window DateRange, shape string) (Report, error) {
	if root == nil {
		return Report{}, fmt.Errorf("aggregate: nil root")
	}

	totalsByUser, err := aggregator.subtreeTotals(root, window)
	if err != nil {
		return Report{}, err
	}

	report := Report{Shape: shape, Window: window, Rows: make([]ReportRow, 0)}

	switch shape {
	case ShapeIndividual:
		report.Rows = append(report.Rows, shapeRow(root.User, "", totalsByUser[root.User.ID]))
		for _, child := range root.Children {
			report.Rows = append(report.Rows, shapeRow(child.User, "", totalsByUser[child.User.ID]))
		}

	case ShapeTeam:
		for _, child := range root.Children {
			if len(child.Children) == 0 {
				continue
			}
			report.Rows = append(report.Rows, shapeRow(child.User, "", subtreeSum(child, totalsByUser)))
		}

	case ShapeOrganization:
		report.Rows = append(report.Rows, shapeRow(root.User, "", subtreeSum(root, totalsByUser)))

	default:
		return Report{}, fmt.Errorf("aggregate: unknown shape %q", shape)
	}

	return report, nil
}

// ManagerHierarchyReport is the individual roll-up for every member of a
// manager's subtree, each row labeled relative to the subtree root. Labels
// change grouping only, never the summed values.
func (aggregator *Aggregator) ManagerHierarchyReport(root *HierarchyNode, window DateRange) (Report, error) {
	if root == nil {
		return Report{}, fmt.Errorf("aggregate: nil root")
	}

	totalsByUser, err := aggregator.subtreeTotals(root, window)
	if err != nil {
		return Report{}, err
	}

	report := Report{Shape: ShapeIndividual, Window: window, Rows: make([]ReportRow, 0)}
	directReports := make(map[uint]bool, len(root.Children))
	for _, child := range root.Children {
		directReports[child.User.ID] = true
	}

	root.Walk(func(node *HierarchyNode) {
		relation := RelationIndirectReport
		switch {
		case node.User.ID == root.User.ID:
			relation = RelationManager
		case directReports[node.User.ID]:
			relation = RelationDirectReport
		}
		report.Rows = append(report.Rows, shapeRow(node.User, relation, totalsByUser[node.User.ID]))
	})

	return report, nil
}

// MemberTotals returns each subtree member's own totals for the window,
// keyed by user id. Members without records are absent from the map and
// read as zero.
func (aggregator *Aggregator) MemberTotals(root *HierarchyNode, window DateRange) (map[uint]ActivityTotals, error) {
	if root == nil {
		return nil, fmt.Errorf("aggregate: nil root")
	}
	return aggregator.subtreeTotals(root, window)
}

// subtreeTotals fetches every member's records once and sums them per user.
// Membership is deduped by user id even though the tree cannot hold a node
// twice, so a window spanning a hierarchy change still counts each user
// once.
func (aggregator *Aggregator) subtreeTotals(root *HierarchyNode, window DateRange) (map[uint]ActivityTotals, error) {
	seen := make(map[uint]bool)
	memberIDs := make([]uint, 0)
	root.Walk(func(node *HierarchyNode) {
		if seen[node.User.ID] {
			return
		}
		seen[node.User.ID] = true
		memberIDs = append(memberIDs, node.User.ID)
	})

	records, err := aggregator.activities.ListByUsersInRange(memberIDs, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	totalsByUser := make(map[uint]ActivityTotals, len(memberIDs))
	countedDays := make(map[uint]map[string]bool, len(memberIDs))
	for _, record := range records {
		if !seen[record.UserID] || !window.Contains(record.Date) {
			continue
		}
		day := record.Date.Format(dayLayout)
		if countedDays[record.UserID] == nil {
			countedDays[record.UserID] = make(map[string]bool)
		}
		if countedDays[record.UserID][day] {
			continue
		}
		countedDays[record.UserID][day] = true

		totals := totalsByUser[record.UserID]
		totals.addRecord(record)
		totalsByUser[record.UserID] = totals
	}
	return totalsByUser, nil
}

func subtreeSum(node *HierarchyNode, totalsByUser map[uint]ActivityTotals) ActivityTotals {
	sum := ActivityTotals{}
	seen := make(map[uint]bool)
	node.Walk(func(current *HierarchyNode) {
		if seen[current.User.ID] {
			return
		}
		seen[current.User.ID] = true
		sum.merge(totalsByUser[current.User.ID])
	})
	return sum
}

// ShapeMemberRow renders one user's totals as a report row, formatting the
// premium amounts exactly once.
func ShapeMemberRow(user models.User, totals ActivityTotals) ReportRow {
	return shapeRow(user, "", totals)
}

func shapeRow(user models.User, relation string, totals ActivityTotals) ReportRow {
	return ReportRow{
		UserID:         user.ID,
		Name:           user.Name,
		Role:           user.Role,
		Relation:       relation,
		Totals:         totals,
		Premium:        FormatCents(totals.PremiumCents),
		BankersPremium: FormatCents(totals.BankersPremiumCents),
	}
}
