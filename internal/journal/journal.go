package journal

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/nathanyu/account-transfer/internal/domain"
)

// Journal provides append-only audit storage for transfer records as
// line-delimited JSON. It is observability output: account balances are
// never rebuilt from it.
type Journal struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// Open creates a journal backed by the given file path.
func Open(filePath string) (*Journal, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	return &Journal{
		filePath: filePath,
		file:     file,
	}, nil
}

// Append writes one record to the journal.
func (j *Journal) Append(rec domain.TransferRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := domain.SerializeRecord(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	// Newline for line-delimited JSON.
	data = append(data, '\n')

	if _, err := j.file.Write(data); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}

	return nil
}

// LoadAll reads every record from the journal, oldest first.
func (j *Journal) LoadAll() ([]domain.TransferRecord, error) {
	file, err := os.Open(j.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.TransferRecord{}, nil
		}
		return nil, fmt.Errorf("failed to open journal for reading: %w", err)
	}
	defer file.Close()

	var records []domain.TransferRecord
	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		rec, err := domain.DeserializeRecord(line)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize record at line %d: %w", lineNum, err)
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading journal: %w", err)
	}

	return records, nil
}

// Close closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file != nil {
		return j.file.Close()
	}
	return nil
}

// Clear truncates the journal (for testing purposes).
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file != nil {
		j.file.Close()
	}

	file, err := os.OpenFile(j.filePath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}

	j.file = file
	return nil
}
