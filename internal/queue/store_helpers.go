package queue

import (
	"database/sql"
	"strings"
	"time"
)

const jobColumns = "id, input_file, source_path, output_file, output_path, status, error_message, progress_message, created_at, updated_at"

// timeFormat keeps a fixed-width fractional second so stored timestamps sort
// lexicographically. RFC3339Nano trims trailing zeros and would not.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              string
		inputFile       sql.NullString
		sourcePath      sql.NullString
		outputFile      sql.NullString
		outputPath      sql.NullString
		statusStr       string
		errorMessage    sql.NullString
		progressMessage sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&inputFile,
		&sourcePath,
		&outputFile,
		&outputPath,
		&statusStr,
		&errorMessage,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		InputFile:       inputFile.String,
		SourcePath:      sourcePath.String,
		OutputFile:      outputFile.String,
		OutputPath:      outputPath.String,
		Status:          Status(statusStr),
		ErrorMessage:    errorMessage.String,
		ProgressMessage: progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func parseTimeString(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}
