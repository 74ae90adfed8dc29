package datasource

import (
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
)

// SQLiteReader provides read access to a pipeline results database.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a results database for reading.
func NewSQLiteReader(source Source) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		db.Exec(pragma) // best-effort; read performance only
	}

	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadJob reads the full job out of the database: the job row plus its
// reads, variants and features. Reads that fail to decode are skipped via
// warn, in line with the viewer's partial-data policy.
func (r *SQLiteReader) LoadJob(warn func(string)) (*model.Job, error) {
	if warn == nil {
		warn = func(string) {}
	}

	job := &model.Job{}
	err := r.db.QueryRow(`SELECT reference, length FROM job LIMIT 1`).
		Scan(&job.Reference, &job.Length)
	if err != nil {
		return nil, fmt.Errorf("read job row: %w", err)
	}

	reads, err := r.loadReads(warn)
	if err != nil {
		return nil, err
	}
	job.Reads = reads

	job.Features = r.loadFeatures(warn)
	return job, nil
}

// loadReads decodes all read rows. Trace arrays and the alignment map are
// stored as JSON blobs; variants live in their own table.
func (r *SQLiteReader) loadReads(warn func(string)) ([]*model.ReadResult, error) {
	rows, err := r.db.Query(`SELECT id, name, reverse, trace, consensus_align FROM reads ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query reads: %w", err)
	}
	defer rows.Close()

	var reads []*model.ReadResult
	for rows.Next() {
		var (
			id        int64
			name      string
			reverse   sql.NullBool
			traceJSON []byte
			alignJSON []byte
		)
		if err := rows.Scan(&id, &name, &reverse, &traceJSON, &alignJSON); err != nil {
			warn(fmt.Sprintf("skipping read row: %v", err))
			continue
		}

		read := &model.ReadResult{Name: name}
		if reverse.Valid {
			read.Reverse = reverse.Bool
		}

		var trace model.Trace
		if err := json.Unmarshal(traceJSON, &trace); err != nil {
			warn(fmt.Sprintf("skipping read %s: bad trace blob: %v", name, err))
			continue
		}
		read.Trace = &trace

		if len(alignJSON) > 0 {
			align := make(map[coord.RefPos]model.AlignmentEntry)
			if err := json.Unmarshal(alignJSON, &align); err != nil {
				warn(fmt.Sprintf("read %s: bad alignment blob: %v", name, err))
			} else {
				read.ConsensusAlign = align
			}
		}

		read.Variants = r.loadVariants(id, warn)

		if err := read.Validate(); err != nil {
			warn(fmt.Sprintf("skipping read %s: %v", name, err))
			continue
		}
		reads = append(reads, read)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reads: %w", err)
	}
	return reads, nil
}

// loadVariants is best-effort: a read without a variants table entry simply
// has none.
func (r *SQLiteReader) loadVariants(readID int64, warn func(string)) []model.VariantMarker {
	rows, err := r.db.Query(`
		SELECT pos, ref, alt, type, genotype, qual, basepos, signalpos
		FROM variants WHERE read_id = ? ORDER BY pos`, readID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var variants []model.VariantMarker
	for rows.Next() {
		var (
			v                  model.VariantMarker
			typ, genotype      sql.NullString
			qual               sql.NullInt64
			basepos, signalpos sql.NullInt64
		)
		var pos int64
		if err := rows.Scan(&pos, &v.Ref, &v.Alt, &typ, &genotype, &qual, &basepos, &signalpos); err != nil {
			warn(fmt.Sprintf("skipping variant row: %v", err))
			continue
		}
		v.RefPos = coord.RefPos(pos)
		if typ.Valid {
			v.Type = typ.String
		}
		if genotype.Valid {
			v.Genotype = genotype.String
		}
		if qual.Valid {
			v.Quality = int(qual.Int64)
		}
		if basepos.Valid {
			v.BasePos = coord.BaseIndex(basepos.Int64)
		}
		if signalpos.Valid {
			v.SignalScanPos = coord.ScanIndex(signalpos.Int64)
		}
		variants = append(variants, v)
	}
	return variants
}

// loadFeatures is best-effort: older pipeline outputs have no features table.
func (r *SQLiteReader) loadFeatures(warn func(string)) []model.Feature {
	rows, err := r.db.Query(`SELECT type, name, start, end, strand FROM features ORDER BY start`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var features []model.Feature
	for rows.Next() {
		var (
			f          model.Feature
			name       sql.NullString
			start, end int64
			strand     sql.NullInt64
		)
		if err := rows.Scan(&f.Type, &name, &start, &end, &strand); err != nil {
			warn(fmt.Sprintf("skipping feature row: %v", err))
			continue
		}
		if name.Valid {
			f.Name = name.String
		}
		f.Start = coord.RefPos(start)
		f.End = coord.RefPos(end)
		if strand.Valid {
			f.Strand = model.Strand(strand.Int64)
		}
		features = append(features, f)
	}
	return features
}

// CountReads returns the number of read rows in the database.
func (r *SQLiteReader) CountReads() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM reads`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
