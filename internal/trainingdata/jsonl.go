// Package trainingdata reads and writes line-delimited JSON training records.
package trainingdata

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/kapu/player-generator-go/internal/domain"
	apperrors "github.com/kapu/player-generator-go/pkg/errors"
)

// DefaultPattern matches crawler output files. Names sort by date, so the
// greatest one is the newest.
const DefaultPattern = "*.jsonl"

const maxLineBytes = 4 * 1024 * 1024

var errMissingNationality = errors.New("missing country_id")

// Read decodes one TrainingProfile per non-blank line. The first bad line
// aborts the read with a MalformedRecordError naming it.
func Read(r io.Reader) ([]domain.TrainingProfile, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	profiles := make([]domain.TrainingProfile, 0, 256)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		profile, err := decodeRecord(line)
		if err != nil {
			return nil, apperrors.NewMalformedRecordError(lineNo, err)
		}
		profiles = append(profiles, profile)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewMalformedRecordError(lineNo+1, err)
	}
	return profiles, nil
}

func decodeRecord(line []byte) (domain.TrainingProfile, error) {
	var profile domain.TrainingProfile
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&profile); err != nil {
		return domain.TrainingProfile{}, err
	}
	if profile.NationalityID == 0 {
		return domain.TrainingProfile{}, errMissingNationality
	}
	return profile, nil
}

// Write encodes each profile on its own line.
func Write(w io.Writer, profiles []domain.TrainingProfile) error {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	for i := range profiles {
		if err := enc.Encode(&profiles[i]); err != nil {
			return fmt.Errorf("encode profile %d: %w", i+1, err)
		}
	}
	return buf.Flush()
}

func LoadFile(path string) ([]domain.TrainingProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open training file: %w", err)
	}
	defer f.Close()

	profiles, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profiles, nil
}

// SaveFile writes profiles atomically via a temp file and rename.
func SaveFile(path string, profiles []domain.TrainingProfile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Write(f, profiles); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LatestFile returns the lexicographically greatest file in dir matching
// pattern.
func LatestFile(dir, pattern string) (string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no training files matching %s in %s", pattern, dir)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches[0], nil
}

// Fingerprint identifies a training set; any change to the records changes
// it. Used to version cached profiles.
func Fingerprint(profiles []domain.TrainingProfile) string {
	h := fnv.New64a()
	if err := Write(h, profiles); err != nil {
		return "unversioned"
	}
	return strconv.FormatUint(h.Sum64(), 36)
}
