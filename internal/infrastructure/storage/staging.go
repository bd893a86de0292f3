package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"ReviewLens/internal/config"
	"ReviewLens/internal/domain"
)

// stagingHeader is the fixed column order of the staging file. The
// bank_name column is a placeholder natural key resolved to bank_id by
// the post-load script.
var stagingHeader = []string{
	"bank_name", "content", "clean_content", "rating",
	"review_date", "source", "sentiment", "sentiment_score", "themes",
}

// artifacts are the transient files of one bulk load attempt. All
// three are removed after use whether the load succeeds or fails.
type artifacts struct {
	DataPath    string
	ControlPath string
	ResolvePath string
}

// remove deletes every staging file, ignoring already-gone entries.
func (a artifacts) remove() {
	for _, path := range []string{a.DataPath, a.ControlPath, a.ResolvePath} {
		if path == "" {
			continue
		}
		_ = os.Remove(path)
	}
}

// writeArtifacts serializes the batch into the staging trio under dir.
// Field truncation happens here, at write time, never upstream. Rows
// whose review date is unknown cannot satisfy the NOT NULL date column
// and are excluded up front, reported via skipped.
func writeArtifacts(dir string, cfg config.StorageConfig, batch []domain.ThemedReview) (art artifacts, staged, skipped int, err error) {
	id := uuid.New().String()
	art = artifacts{
		DataPath:    filepath.Join(dir, fmt.Sprintf("stage-%s.csv", id)),
		ControlPath: filepath.Join(dir, fmt.Sprintf("stage-%s.ctl", id)),
		ResolvePath: filepath.Join(dir, fmt.Sprintf("stage-%s-post-load.sql", id)),
	}

	file, err := os.Create(art.DataPath)
	if err != nil {
		return art, 0, 0, fmt.Errorf("create staging file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err = writer.Write(stagingHeader); err != nil {
		file.Close()
		return art, 0, 0, fmt.Errorf("write staging header: %w", err)
	}

	for _, review := range batch {
		if review.Date == domain.DateUnknown {
			skipped++
			continue
		}
		record := []string{
			review.Bank,
			Truncate(review.Content, cfg.ContentMaxChars),
			Truncate(review.CleanContent, cfg.ContentMaxChars),
			strconv.Itoa(review.Rating),
			review.Date,
			Truncate(review.Source, cfg.SourceMaxChars),
			string(review.Sentiment),
			strconv.FormatFloat(review.Score, 'f', -1, 64),
			JoinThemes(review.Themes, cfg.ThemesMaxChars),
		}
		if err = writer.Write(record); err != nil {
			file.Close()
			return art, staged, skipped, fmt.Errorf("write staging row: %w", err)
		}
		staged++
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		file.Close()
		return art, staged, skipped, fmt.Errorf("flush staging file: %w", err)
	}
	if err = file.Close(); err != nil {
		return art, staged, skipped, fmt.Errorf("close staging file: %w", err)
	}

	if err = os.WriteFile(art.ControlPath, []byte(controlDescriptor(art.DataPath, cfg)), 0o644); err != nil {
		return art, staged, skipped, fmt.Errorf("write control descriptor: %w", err)
	}
	if err = os.WriteFile(art.ResolvePath, []byte(postLoadScript), 0o644); err != nil {
		return art, staged, skipped, fmt.Errorf("write post-load script: %w", err)
	}

	return art, staged, skipped, nil
}

// controlDescriptor names the delimiters and field widths of the
// staging file, matching the header column by column.
func controlDescriptor(dataPath string, cfg config.StorageConfig) string {
	return fmt.Sprintf(`LOAD DATA
INFILE '%s'
APPEND INTO TABLE reviews
FIELDS TERMINATED BY ',' OPTIONALLY ENCLOSED BY '"'
(
    bank_name CHAR(100),
    content CHAR(%d),
    clean_content CHAR(%d),
    rating INTEGER EXTERNAL,
    review_date DATE "YYYY-MM-DD",
    source CHAR(%d),
    sentiment CHAR(10),
    sentiment_score DECIMAL EXTERNAL,
    themes CHAR(%d)
)
`, dataPath, cfg.ContentMaxChars, cfg.ContentMaxChars, cfg.SourceMaxChars, cfg.ThemesMaxChars)
}

// postLoadScript resolves the placeholder natural key to the surrogate
// key in one set-based update, then drops the placeholder column.
const postLoadScript = `UPDATE reviews r
SET bank_id = b.bank_id
FROM banks b
WHERE r.bank_name = b.name
  AND r.bank_id IS NULL;

ALTER TABLE reviews DROP COLUMN bank_name;
`

// Truncate limits a string to max characters, counting runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// JoinThemes serializes the theme list comma-joined and truncated to
// the storage cap.
func JoinThemes(themes []string, max int) string {
	return Truncate(strings.Join(themes, ","), max)
}
