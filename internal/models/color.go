package models

import (
	"strings"

	"golang.org/x/text/cases"
)

// Color é uma cor disponível numa página de produto
type Color struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}

// ColorKey é a chave de igualdade de uma cor. Vitrines com códigos estáveis comparam pelo
// código; as demais comparam pelo nome, sem diferenciar maiúsculas.
type ColorKey string

// Key calcula a chave da cor segundo a regra da região
func (c Color) Key(region Region) ColorKey {
	code := strings.TrimSpace(c.Code)
	if region.UsesColorCodes() && code != "" {
		return ColorKey("code:" + strings.ToLower(code))
	}
	return ColorKey("name:" + FoldName(c.Name))
}

// Label devolve o nome da cor, ou o código quando não há nome
func (c Color) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Code
}

// FoldName normaliza um nome de cor para comparação
func FoldName(name string) string {
	// cases.Caser guarda estado, por isso um por chamada
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// ContainsColor informa se target está em colors
func ContainsColor(region Region, colors []Color, target Color) bool {
	key := target.Key(region)
	for _, c := range colors {
		if c.Key(region) == key {
			return true
		}
	}
	return false
}

// DedupeColors remove cores repetidas mantendo a primeira ocorrência
func DedupeColors(region Region, colors []Color) []Color {
	seen := make(map[ColorKey]bool, len(colors))
	out := make([]Color, 0, len(colors))
	for _, c := range colors {
		if strings.TrimSpace(c.Code) == "" && strings.TrimSpace(c.Name) == "" {
			continue
		}
		key := c.Key(region)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
