package funnel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	countryQuery = gountries.New()
	stepCaser    = cases.Title(language.AmericanEnglish)
)

// countryName resolves an ISO alpha-2 code to a display name, or returns the
// code unchanged when it is unknown.
func countryName(code string) string {
	if code == "" {
		return ""
	}
	country, err := countryQuery.FindCountryByAlpha(code)
	if err != nil {
		return code
	}
	return country.Name.Common
}

// StepLabel turns a machine step name like "account_info" into a display label
// ("Account Info"). When the name is empty it falls back to "Step N", or ""
// when the step number is unset.
func StepLabel(stepName string, stepNumber int) string {
	if stepName == "" {
		if stepNumber > 0 {
			return fmt.Sprintf("Step %d", stepNumber)
		}
		return ""
	}
	return stepCaser.String(strings.NewReplacer("_", " ", "-", " ").Replace(stepName))
}

// AggregateSessions folds a slice of tracked events into per-visitor session
// summaries plus funnel statistics. It is a pure function of its input: no I/O,
// no shared state, total over any well-formed slice including the empty one.
//
// The input order is caller-defined (the store returns created_at descending),
// so first_seen/last_seen are computed as true min/max over each session's
// events rather than relying on iteration position.
func AggregateSessions(events []TrackedEvent, dateRangeDays int) FunnelReport {
	accumulators := make(map[string]*SessionSummary)
	order := make([]string, 0)

	for _, e := range events {
		acc, ok := accumulators[e.VisitorSessionID]
		if !ok {
			acc = &SessionSummary{
				SessionID:        e.VisitorSessionID,
				VisitorAlias:     VisitorAlias(e.VisitorSessionID),
				VisitorIP:        e.VisitorIP,
				UserAgent:        e.UserAgent,
				Country:          e.Country,
				CountryName:      countryName(e.Country),
				FirstSeen:        e.CreatedAt,
				LastSeen:         e.CreatedAt,
				Events:           make([]TrackedEvent, 0, 4),
				StepsCompleted:   make([]int, 0, FunnelSteps),
				ConversionStatus: StatusAbandoned,
			}
			accumulators[e.VisitorSessionID] = acc
			order = append(order, e.VisitorSessionID)
		}

		acc.Events = append(acc.Events, e)
		if e.CreatedAt.Before(acc.FirstSeen) {
			acc.FirstSeen = e.CreatedAt
		}
		if e.CreatedAt.After(acc.LastSeen) {
			acc.LastSeen = e.CreatedAt
		}

		if e.StepNumber > 0 && e.EventType == EventStepComplete {
			acc.StepsCompleted = append(acc.StepsCompleted, e.StepNumber)
			if e.StepNumber > acc.FurthestStep {
				acc.FurthestStep = e.StepNumber
				acc.FurthestStepLabel = StepLabel(e.StepName, e.StepNumber)
			}
		}

		if e.TimeSpentSeconds > 0 {
			acc.TotalTimeSeconds += e.TimeSpentSeconds
		}

		// Monotonic: once converted a session never reverts, regardless of
		// later events in the fold order.
		if e.EventType == EventPaymentComplete {
			acc.ConversionStatus = StatusConverted
		}
	}

	sessions := make([]SessionSummary, 0, len(order))
	for _, id := range order {
		sessions = append(sessions, *accumulators[id])
	}

	// Most recently started session first. The stable sort keeps fold-discovery
	// order for equal timestamps, so identical input yields identical output.
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].FirstSeen.After(sessions[j].FirstSeen)
	})

	summary := Summary{
		TotalSessions: len(sessions),
		DateRangeDays: dateRangeDays,
	}
	for _, s := range sessions {
		if s.ConversionStatus == StatusConverted {
			summary.ConvertedSessions++
		}
		if s.FurthestStep >= 1 {
			summary.StepAnalysis.Step1Starts++
		}
		if s.FurthestStep >= 2 {
			summary.StepAnalysis.Step2Starts++
		}
		if s.FurthestStep >= 3 {
			summary.StepAnalysis.Step3Starts++
		}
		if s.FurthestStep >= 4 {
			summary.StepAnalysis.Step4Starts++
		}
	}
	summary.StepAnalysis.Completions = summary.ConvertedSessions

	if summary.TotalSessions > 0 {
		rate := float64(summary.ConvertedSessions) / float64(summary.TotalSessions) * 100
		summary.ConversionRate = roundRate(rate)
	}

	rawEvents := events
	if rawEvents == nil {
		rawEvents = []TrackedEvent{}
	}

	return FunnelReport{
		Summary:   summary,
		Sessions:  sessions,
		RawEvents: rawEvents,
	}
}

// roundRate rounds half-up to two decimal places.
func roundRate(rate float64) float64 {
	return math.Floor(rate*100+0.5) / 100
}
