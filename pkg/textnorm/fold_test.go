package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civistock/civistock-api/pkg/textnorm"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "tuberia pvc", textnorm.Fold("  Tubería   PVC "))
	assert.Equal(t, "canon", textnorm.Fold("CAÑÓN"))
	assert.Equal(t, "", textnorm.Fold("   "))
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, "cem-01 cemento gris bulto", textnorm.SearchKey("CEM-01", "Cemento Gris", "", "Bulto"))
}
