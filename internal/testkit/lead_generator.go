package testkit

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"leadboard/domain/leads"
)

// LeadGeneratorConfig configures the synthetic lead generator
type LeadGeneratorConfig struct {
	LeadCount     int       `json:"lead_count"`
	Groups        []string  `json:"groups"`
	Statuses      []string  `json:"statuses"`
	DispatchRate  float64   `json:"dispatch_rate"`
	OtherRate     float64   `json:"other_rate"`
	NullDateRate  float64   `json:"null_date_rate"`
	NullGroupRate float64   `json:"null_group_rate"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Seed          int64     `json:"seed"`
}

// DefaultLeadConfig returns a small, messy but realistic campaign
func DefaultLeadConfig() LeadGeneratorConfig {
	return LeadGeneratorConfig{
		LeadCount:     500,
		Groups:        []string{"Colégio Alfa", "Colégio Beta", "Colégio Gama", "Colégio Delta", "Colégio Épsilon"},
		Statuses:      []string{"Novo", "Em atendimento", "Sem WhatsApp", "Número inválido", "Matriculado"},
		DispatchRate:  0.7,
		OtherRate:     0.05,
		NullDateRate:  0.03,
		NullGroupRate: 0.02,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC),
		Seed:          42,
	}
}

// LeadGenerator produces lead tables shaped like the outreach spreadsheets,
// including their inconsistent casing, padding and date formats
type LeadGenerator struct {
	config LeadGeneratorConfig
	rng    *rand.Rand
}

// NewLeadGenerator creates a deterministic generator for config.Seed
func NewLeadGenerator(config LeadGeneratorConfig) *LeadGenerator {
	return &LeadGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	dispatchedSpellings    = []string{"Disparado", "disparado", " DISPARADO ", "Disparado "}
	notDispatchedSpellings = []string{"Não disparado", "não disparado", "NÃO DISPARADO", " Nao disparado"}
	otherSpellings         = []string{"Em fila", "", "Erro"}
	firstNames             = []string{"Ana", "Bruno", "Carla", "Diego", "Elisa", "Fábio", "Gabriela", "Heitor"}
)

// GenerateTable returns a header row plus LeadCount rows
func (g *LeadGenerator) GenerateTable() *leads.Table {
	table := &leads.Table{
		Headers: []string{
			leads.ColumnName, leads.ColumnCreatedAt, leads.ColumnInterestGroup, leads.ColumnPhone,
			leads.ColumnEmail, leads.ColumnDispatch, leads.ColumnLeadStatus,
		},
		Rows: make([][]string, 0, g.config.LeadCount),
	}

	for i := 0; i < g.config.LeadCount; i++ {
		name := fmt.Sprintf("%s %03d", firstNames[g.rng.Intn(len(firstNames))], i+1)
		table.Rows = append(table.Rows, []string{
			name,
			g.createdAt(),
			g.group(),
			fmt.Sprintf("55119%08d", g.rng.Intn(100000000)),
			strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
			g.dispatch(),
			g.config.Statuses[g.rng.Intn(len(g.config.Statuses))],
		})
	}
	return table
}

// GenerateDataset maps a generated table onto the lead schema
func (g *LeadGenerator) GenerateDataset() (*leads.Dataset, error) {
	return leads.MapSchema(g.GenerateTable())
}

func (g *LeadGenerator) createdAt() string {
	if g.rng.Float64() < g.config.NullDateRate {
		if g.rng.Intn(2) == 0 {
			return ""
		}
		return "sem data"
	}
	span := g.config.EndDate.Sub(g.config.StartDate)
	ts := g.config.StartDate.Add(time.Duration(g.rng.Int63n(int64(span)))).Truncate(time.Minute)
	if g.rng.Intn(2) == 0 {
		return ts.Format("02/01/2006 15:04")
	}
	return ts.Format("2006-01-02 15:04:05")
}

func (g *LeadGenerator) group() string {
	if g.rng.Float64() < g.config.NullGroupRate {
		return ""
	}
	return g.config.Groups[g.rng.Intn(len(g.config.Groups))]
}

func (g *LeadGenerator) dispatch() string {
	r := g.rng.Float64()
	switch {
	case r < g.config.OtherRate:
		return otherSpellings[g.rng.Intn(len(otherSpellings))]
	case r < g.config.OtherRate+(1-g.config.OtherRate)*g.config.DispatchRate:
		return dispatchedSpellings[g.rng.Intn(len(dispatchedSpellings))]
	default:
		return notDispatchedSpellings[g.rng.Intn(len(notDispatchedSpellings))]
	}
}
