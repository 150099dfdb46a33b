package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apim-labs/punchlist/internal/checklist"
	"github.com/apim-labs/punchlist/internal/ident"
)

// DemoChecklist is the name of the seeded demo checklist.
const DemoChecklist = "apim-demo"

// seedDemoData populates three interconnected demo slugs: a passing power
// check, a failing switch check that depends on it, and an NA DHCP check
// that depends on the switch.
func (s *Store) seedDemoData(ctx context.Context) error {
	slog.Info("seeding demo checklist data", "checklist", DemoChecklist)

	now := s.now()

	power := checklist.Slug{
		Checklist:    DemoChecklist,
		Section:      "Site Readiness",
		Procedure:    "Power Bring-up",
		Action:       "Verify rack power",
		Spec:         "24V DC stable",
		Result:       "24.1V",
		Status:       checklist.StatusPass,
		Comment:      "Measured at supply taps.",
		Timestamp:    now,
		Instructions: "Use calibrated multimeter on the main supply rails.",
	}

	uplink := checklist.Slug{
		Checklist:    DemoChecklist,
		Section:      "Networking",
		Procedure:    "Switch bring-up",
		Action:       "Verify uplink",
		Spec:         "1GbE link up",
		Result:       "",
		Status:       checklist.StatusFail,
		Comment:      "No link LED on port 48.",
		Timestamp:    now,
		Instructions: "Patch into the core switch, check SFP seating, and confirm VLAN tagging.",
	}

	dhcp := checklist.Slug{
		Checklist:    DemoChecklist,
		Section:      "Networking",
		Procedure:    "DHCP scope",
		Action:       "Request lease",
		Spec:         "Lease within 1s, correct gateway",
		Result:       "pending",
		Status:       checklist.StatusNA,
		Comment:      "Waiting on uplink resolution.",
		Timestamp:    now,
		Instructions: "Use iperf client once uplink is established to verify end-to-end path.",
	}

	for _, slug := range []*checklist.Slug{&power, &uplink, &dhcp} {
		slug.AddressID = ident.AddressID(
			slug.Checklist, slug.Section, slug.Procedure, slug.Action, slug.Spec)
	}

	uplink.Relationships = []checklist.Edge{{Predicate: "depends_on", Target: power.AddressID}}
	dhcp.Relationships = []checklist.Edge{{Predicate: "depends_on", Target: uplink.AddressID}}

	for _, slug := range []checklist.Slug{power, uplink, dhcp} {
		if err := s.UpsertSlug(ctx, slug); err != nil {
			return fmt.Errorf("seed slug %s: %w", slug.Procedure, err)
		}
	}
	for _, slug := range []checklist.Slug{power, uplink, dhcp} {
		if err := s.ReplaceRelationships(ctx, slug.AddressID, slug.Relationships); err != nil {
			return fmt.Errorf("seed relationships for %s: %w", slug.Procedure, err)
		}
	}

	return nil
}
