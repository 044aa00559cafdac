package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/keel-trb-api/internal/models"
	"github.com/keel-trb-api/internal/repository"
)

// assignmentSpec configures the import pipeline for sea-service assignment rows
func assignmentSpec() *Spec {
	return &Spec{
		Entity: "assignments",
		Columns: []string{"email", "vessel_imo", "date_joined"},

		LoadRefs: func(ctx context.Context, repos *repository.Repositories) (*Reference, error) {
			emails, err := repos.Cadet.EmailIndex(ctx)
			if err != nil {
				return nil, err
			}
			imos, err := repos.Vessel.IMOIndex(ctx)
			if err != nil {
				return nil, err
			}
			keys, err := repos.Assignment.KeyIndex(ctx)
			if err != nil {
				return nil, err
			}
			open, err := repos.Assignment.OpenByCadet(ctx)
			if err != nil {
				return nil, err
			}
			return &Reference{
				CadetIDByEmail:  emails,
				VesselIDByIMO:   imos,
				AssignmentKeys:  keys,
				OpenAssignments: open,
			}, nil
		},

		Normalize: func(input map[string]string) map[string]interface{} {
			return map[string]interface{}{
				"email":       emailCell(input["email"]),
				"vessel_imo":  imoCell(input["vessel_imo"]),
				"date_joined": dateCell(input["date_joined"]),
			}
		},

		Classify: func(row *Row, refs *Reference) {
			var fails, skips, warns []string

			email := asString(row.Normalized["email"])
			imo := asString(row.Normalized["vessel_imo"])
			joined := asString(row.Normalized["date_joined"])

			cadetID, vesselID := "", ""
			if email == "" {
				fails = append(fails, "email is required")
			} else if !emailRegex.MatchString(email) {
				fails = append(fails, fmt.Sprintf("invalid email format: %s", email))
			} else if id, exists := refs.CadetIDByEmail[email]; !exists {
				fails = append(fails, fmt.Sprintf("no cadet registered with email %s", email))
			} else {
				cadetID = id
			}

			if imo == "" {
				fails = append(fails, "vessel_imo is required")
			} else if id, exists := refs.VesselIDByIMO[imo]; !exists {
				fails = append(fails, fmt.Sprintf("vessel with IMO %s does not exist", imo))
			} else {
				vesselID = id
			}

			if joined == "" {
				if row.Input["date_joined"] == "" {
					fails = append(fails, "date_joined is required")
				} else {
					fails = append(fails, fmt.Sprintf("date_joined is not a recognizable date: %s", row.Input["date_joined"]))
				}
			}

			if cadetID != "" && vesselID != "" && joined != "" {
				row.Derived = map[string]interface{}{
					"cadet_id":  cadetID,
					"vessel_id": vesselID,
				}
				if refs.AssignmentKeys[models.AssignmentKey(cadetID, vesselID, joined)] {
					skips = append(skips, fmt.Sprintf("assignment of %s to IMO %s on %s already recorded", email, imo, joined))
				} else if refs.OpenAssignments[cadetID] {
					warns = append(warns, fmt.Sprintf("cadet %s still has an open assignment; this row adds a second one", email))
				}
			}

			resolve(row, fails, skips, warns)
		},

		Key: func(row *Row) string {
			cadetID := asString(row.Derived["cadet_id"])
			vesselID := asString(row.Derived["vessel_id"])
			joined := asString(row.Normalized["date_joined"])
			if cadetID == "" || vesselID == "" || joined == "" {
				return ""
			}
			return models.AssignmentKey(cadetID, vesselID, joined)
		},

		Create: func(ctx context.Context, tx repository.ImportTx, row *Row) (string, error) {
			assignment := &models.Assignment{
				ID:         uuid.New().String(),
				CadetID:    asString(row.Derived["cadet_id"]),
				VesselID:   asString(row.Derived["vessel_id"]),
				DateJoined: asString(row.Normalized["date_joined"]),
			}
			if err := tx.CreateAssignment(ctx, assignment); err != nil {
				return "", err
			}
			return assignment.ID, nil
		},
	}
}
