package file

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileOperations defines methods for discovering, reading and writing files.
type FileOperations interface {
	IsFileExists(filePath string) (bool, error)
	ListFiles(dir string, extension string) ([]string, error)
	Open(filePath string) (io.ReadCloser, error)
	ReadFileRaw(filePath string) ([]byte, error)
	ReadYamlFile(filePath string, v any) error
	WriteFileAtomic(filePath string, write func(w io.Writer) error) error
}

// FileService implements the FileOperations interface using standard file operations.
type FileService struct{}

// NewFileService creates a new instance of FileService.
func NewFileService() *FileService {
	return &FileService{}
}

// IsFileExists checks if the file exists and returns boolean and error
func (fs *FileService) IsFileExists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}

	// checking err == nil because of permission related error
	return err == nil, err
}

// ListFiles returns the regular files in dir whose extension (without the dot) equals
// extension, case-insensitively, sorted by name. Subdirectories are not descended.
func (fs *FileService) ListFiles(dir string, extension string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	want := "." + strings.ToLower(strings.TrimPrefix(extension, "."))
	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == want {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Open opens the file for reading.
func (fs *FileService) Open(filePath string) (io.ReadCloser, error) {
	return os.Open(filePath)
}

// ReadFileRaw reads the whole file.
func (fs *FileService) ReadFileRaw(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}

// ReadYamlFile reads and unmarshals YAML data from the given file.
func (fs *FileService) ReadYamlFile(filePath string, v any) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	return decoder.Decode(v)
}

// WriteFileAtomic streams write's output into a temporary file next to filePath and
// renames it into place once write and the flush succeed.
func (fs *FileService) WriteFileAtomic(filePath string, write func(w io.Writer) error) error {
	tempFile := filePath + ".tmp"

	file, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	buffered := bufio.NewWriter(file)
	if err := write(buffered); err != nil {
		file.Close()
		os.Remove(tempFile) // Clean up partial file
		return err
	}
	if err := buffered.Flush(); err != nil {
		file.Close()
		os.Remove(tempFile)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath) // Atomic file update
}
