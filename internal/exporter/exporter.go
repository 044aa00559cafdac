// Package exporter streams roster exports of the admin entities as CSV or
// xlsx workbooks.
package exporter

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/keel-trb-api/internal/models"
	"github.com/keel-trb-api/internal/repository"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ErrUnknownEntity signals an export request for an unsupported entity family
var ErrUnknownEntity = errors.New("unknown export entity")

// ErrUnknownFormat signals an unsupported export format
var ErrUnknownFormat = errors.New("unsupported export format")

// Exporter streams entity rosters
type Exporter struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// New creates a new Exporter
func New(repos *repository.Repositories, log zerolog.Logger) *Exporter {
	return &Exporter{
		repos: repos,
		log:   log.With().Str("component", "exporter").Logger(),
	}
}

// rowSource adapts one entity family to the shared writers
type rowSource struct {
	header []string
	stream func(ctx context.Context, emit func([]string) error) error
}

func (e *Exporter) source(entity string) (*rowSource, error) {
	switch entity {
	case "cadets":
		return &rowSource{
			header: []string{"full_name", "email", "trainee_type", "rank_label", "nationality", "trb_required", "notes"},
			stream: func(ctx context.Context, emit func([]string) error) error {
				return e.repos.Cadet.StreamAll(ctx, func(c *models.Cadet) error {
					return emit([]string{
						c.FullName, c.Email, c.TraineeType, c.RankLabel,
						c.Nationality, strconv.FormatBool(c.TRBRequired), c.Notes,
					})
				})
			},
		}, nil
	case "vessels":
		return &rowSource{
			header: []string{"imo_number", "vessel_name", "vessel_type", "flag_state", "class_society"},
			stream: func(ctx context.Context, emit func([]string) error) error {
				return e.repos.Vessel.StreamAll(ctx, func(v *models.Vessel) error {
					return emit([]string{v.IMONumber, v.Name, v.VesselType, v.FlagState, v.ClassSociety})
				})
			},
		}, nil
	case "tasks":
		return &rowSource{
			header: []string{"part_number", "title", "ship_type_name"},
			stream: func(ctx context.Context, emit func([]string) error) error {
				return e.repos.Task.StreamAll(ctx, func(t *models.TrainingTask) error {
					return emit([]string{t.PartNumber, t.Title, t.ShipType})
				})
			},
		}, nil
	case "assignments":
		return &rowSource{
			header: []string{"email", "vessel_imo", "date_joined", "date_left"},
			stream: func(ctx context.Context, emit func([]string) error) error {
				return e.repos.Assignment.StreamAll(ctx, func(a *models.Assignment) error {
					left := ""
					if a.DateLeft != nil {
						left = *a.DateLeft
					}
					return emit([]string{a.CadetEmail, a.VesselIMO, a.DateJoined, left})
				})
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
}

// Export streams one entity roster in the requested format
func (e *Exporter) Export(ctx context.Context, w http.ResponseWriter, entity, format string) error {
	src, err := e.source(entity)
	if err != nil {
		return err
	}

	e.log.Info().Str("entity", entity).Str("format", format).Msg("Starting export")

	switch format {
	case "csv", "":
		return e.writeCSV(ctx, w, entity, src)
	case "xlsx":
		return e.writeXLSX(ctx, w, entity, src)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func (e *Exporter) writeCSV(ctx context.Context, w http.ResponseWriter, entity string, src *rowSource) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", entity))

	writer := csv.NewWriter(w)
	if err := writer.Write(src.header); err != nil {
		return err
	}

	count := 0
	err := src.stream(ctx, func(record []string) error {
		count++
		return writer.Write(record)
	})
	writer.Flush()
	if err != nil {
		return err
	}

	e.log.Info().Str("entity", entity).Int("count", count).Msg("CSV export completed")
	return writer.Error()
}

func (e *Exporter) writeXLSX(ctx context.Context, w http.ResponseWriter, entity string, src *rowSource) error {
	file := excelize.NewFile()
	defer file.Close()
	sheet := file.GetSheetName(0)

	if err := setRow(file, sheet, 1, src.header); err != nil {
		return err
	}

	rowNum := 1
	err := src.stream(ctx, func(record []string) error {
		rowNum++
		return setRow(file, sheet, rowNum, record)
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", entity))

	if _, err := file.WriteTo(w); err != nil {
		return err
	}

	e.log.Info().Str("entity", entity).Int("count", rowNum-1).Msg("Workbook export completed")
	return nil
}

func setRow(file *excelize.File, sheet string, row int, values []string) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}
