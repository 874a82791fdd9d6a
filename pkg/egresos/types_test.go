package egresos_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/egresos/pkg/egresos"
)

func TestRunSummary_ProcessedAny(t *testing.T) {
	var s egresos.RunSummary
	assert.False(t, s.ProcessedAny())

	s.Files = append(s.Files, egresos.FileResult{Outcome: egresos.OutcomeAlreadyLoaded})
	assert.False(t, s.ProcessedAny())

	s.Files = append(s.Files, egresos.FileResult{Outcome: egresos.OutcomeLoaded})
	assert.True(t, s.ProcessedAny())
}

func TestRunSummary_Count(t *testing.T) {
	s := egresos.RunSummary{Files: []egresos.FileResult{
		{Outcome: egresos.OutcomeLoaded},
		{Outcome: egresos.OutcomeLoaded},
		{Outcome: egresos.OutcomeEmpty},
	}}

	assert.Equal(t, 2, s.Count(egresos.OutcomeLoaded))
	assert.Equal(t, 1, s.Count(egresos.OutcomeEmpty))
	assert.Equal(t, 0, s.Count(egresos.OutcomePersistFailed))
}

func TestDefaultColumnMapping_RenamesStayDistinct(t *testing.T) {
	m := egresos.DefaultColumnMapping()
	assert.Equal(t, "DIAS_ESTADA", m["DIAS_ESTADIA"])
	assert.Equal(t, "SEXO", m["SEXO_PERSONA"])
	assert.Len(t, m, 18)

	targets := make(map[string]bool, len(m))
	for _, v := range m {
		assert.False(t, targets[v], "duplicate target %s", v)
		targets[v] = true
	}
}
