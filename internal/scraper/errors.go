package scraper

import (
	"errors"
	"fmt"
)

// errNoPayload indica que a estratégia não encontrou seu payload na página
var errNoPayload = errors.New("payload estruturado não encontrado")

// FetchError é uma falha de rede ou HTTP ao buscar uma página
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("erro ao buscar %s: status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("erro ao buscar %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// transient informa se a falha deve contar para o circuit breaker
func (e *FetchError) transient() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == 403 || e.StatusCode == 429 || e.StatusCode >= 500
}

// ParseError indica um payload estruturado presente mas malformado
type ParseError struct {
	Strategy string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("estratégia %s: payload malformado: %v", e.Strategy, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
