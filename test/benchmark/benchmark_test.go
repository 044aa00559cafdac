package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/keel-trb-api/internal/importer"
	"github.com/keel-trb-api/internal/mocks"
	"github.com/keel-trb-api/internal/models"
)

func cadetCSV(rows int) []byte {
	var buf bytes.Buffer
	buf.WriteString("full_name,email,trainee_type,nationality,notes\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&buf, "Cadet %06d,cadet%06d@test.com,deck_cadet,PH,\n", i, i)
	}
	return buf.Bytes()
}

// BenchmarkPreview benchmarks the full normalize/classify pipeline over a
// 1000-row upload
func BenchmarkPreview(b *testing.B) {
	repos := mocks.NewRepositories()
	engine := importer.NewEngine(repos, 10000, zerolog.Nop())
	data := cadetCSV(1000)

	b.ResetTimer()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		if _, err := engine.Preview(context.Background(), "cadets", "cadets.csv", data); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkPreviewAllSkip benchmarks classification when every row already
// exists, the duplicate-check heavy path
func BenchmarkPreviewAllSkip(b *testing.B) {
	repos := mocks.NewRepositories()
	cadets := repos.Cadet.(*mocks.MockCadetRepository)
	for i := 0; i < 1000; i++ {
		cadets.Add(&models.Cadet{
			ID:          fmt.Sprintf("c%06d", i),
			FullName:    fmt.Sprintf("Cadet %06d", i),
			Email:       fmt.Sprintf("cadet%06d@test.com", i),
			TraineeType: "deck_cadet",
		})
	}
	engine := importer.NewEngine(repos, 10000, zerolog.Nop())
	data := cadetCSV(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Preview(context.Background(), "cadets", "cadets.csv", data); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkCommit benchmarks a full transactional commit against the
// in-memory store
func BenchmarkCommit(b *testing.B) {
	data := cadetCSV(1000)

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		repos := mocks.NewRepositories()
		engine := importer.NewEngine(repos, 10000, zerolog.Nop())
		b.StartTimer()

		if _, err := engine.Commit(context.Background(), "cadets", "cadets.csv", data, "bench"); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkTemplate benchmarks workbook template generation
func BenchmarkTemplate(b *testing.B) {
	engine := importer.NewEngine(mocks.NewRepositories(), 10000, zerolog.Nop())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Template("cadets"); err != nil {
			b.Fatal(err)
		}
	}
}
