package error

import (
	"fmt"
	"net/http"
)

type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// ConfigLoadError is returned when a mapping file cannot be read or decoded.
type ConfigLoadError struct {
	Path string
	Err  error
}

func (err *ConfigLoadError) Error() string {
	return fmt.Sprintf("failed to load config %s: %v", err.Path, err.Err)
}

func (err *ConfigLoadError) Unwrap() error {
	return err.Err
}

func (err *ConfigLoadError) ErrCode() string {
	return "CONFIG_LOAD_ERROR"
}

func (err *ConfigLoadError) StatusCode() int {
	return http.StatusInternalServerError
}
