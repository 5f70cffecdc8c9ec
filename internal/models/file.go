package models

import "strings"

// File загруженный файл (аватар). Path хранит имя файла на диске,
// URL вычисляется из публичного адреса сервиса.
type File struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// FileURL собирает публичную ссылку на файл.
func FileURL(publicURL, path string) string {
	return strings.TrimRight(publicURL, "/") + "/files/" + path
}

// WithURL заполняет поле URL и возвращает файл.
func (f *File) WithURL(publicURL string) *File {
	if f == nil {
		return nil
	}
	f.URL = FileURL(publicURL, f.Path)
	return f
}
