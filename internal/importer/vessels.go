package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/keel-trb-api/internal/models"
	"github.com/keel-trb-api/internal/repository"
)

// vesselSpec configures the import pipeline for vessel rows
func vesselSpec() *Spec {
	return &Spec{
		Entity: "vessels",
		Columns: []string{"imo_number", "vessel_name", "vessel_type", "flag_state", "class_society"},

		LoadRefs: func(ctx context.Context, repos *repository.Repositories) (*Reference, error) {
			imos, err := repos.Vessel.IMOIndex(ctx)
			if err != nil {
				return nil, err
			}
			shipTypes, err := repos.Task.ShipTypes(ctx)
			if err != nil {
				return nil, err
			}
			return &Reference{VesselIDByIMO: imos, ShipTypes: shipTypes}, nil
		},

		Normalize: func(input map[string]string) map[string]interface{} {
			return map[string]interface{}{
				"imo_number":    imoCell(input["imo_number"]),
				"vessel_name":   stringCell(input["vessel_name"]),
				"vessel_type":   stringCell(input["vessel_type"]),
				"flag_state":    stringCell(input["flag_state"]),
				"class_society": stringCell(input["class_society"]),
			}
		},

		Classify: func(row *Row, refs *Reference) {
			var fails, skips, warns []string

			imo := asString(row.Normalized["imo_number"])
			name := asString(row.Normalized["vessel_name"])
			vesselType := asString(row.Normalized["vessel_type"])

			if imo == "" {
				fails = append(fails, "imo_number is required")
			} else if !allDigits(imo) || len(imo) != 7 {
				fails = append(fails, fmt.Sprintf("imo_number must be exactly 7 digits: %s", imo))
			}
			if name == "" {
				fails = append(fails, "vessel_name is required")
			}

			if vesselType == "" {
				fails = append(fails, "vessel_type is required")
			} else {
				canonical, exact, matched := fuzzyMatch(vesselType, refs.ShipTypes)
				if !matched {
					fails = append(fails, fmt.Sprintf("unknown vessel_type %q; must be one of: %s",
						vesselType, strings.Join(refs.ShipTypes, ", ")))
				} else {
					row.Derived = map[string]interface{}{"vessel_type": canonical}
					if !exact {
						warns = append(warns, fmt.Sprintf("vessel_type %q interpreted as %q", vesselType, canonical))
					}
				}
			}

			if imo != "" {
				if _, exists := refs.VesselIDByIMO[imo]; exists {
					skips = append(skips, fmt.Sprintf("vessel with IMO %s already registered", imo))
				}
			}

			if allDigits(imo) && len(imo) == 7 && !models.ValidIMOChecksum(imo) {
				warns = append(warns, fmt.Sprintf("imo_number %s fails the IMO check digit; verify before relying on it", imo))
			}
			if asString(row.Normalized["class_society"]) == "" {
				warns = append(warns, "class_society not provided")
			}

			resolve(row, fails, skips, warns)
		},

		Key: func(row *Row) string {
			return asString(row.Normalized["imo_number"])
		},

		Create: func(ctx context.Context, tx repository.ImportTx, row *Row) (string, error) {
			vessel := &models.Vessel{
				ID:           uuid.New().String(),
				IMONumber:    asString(row.Normalized["imo_number"]),
				Name:         asString(row.Normalized["vessel_name"]),
				VesselType:   asString(row.Derived["vessel_type"]),
				FlagState:    asString(row.Normalized["flag_state"]),
				ClassSociety: asString(row.Normalized["class_society"]),
			}
			if err := tx.CreateVessel(ctx, vessel); err != nil {
				return "", err
			}
			return vessel.ID, nil
		},
	}
}
