package shopping

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

func TestParseLinesHappyPath(t *testing.T) {
	fake := &fakeCompleter{response: "```json\n" +
		`[{"name":"Onion","quantity":2,"unit":"cup"},{"name":"garlic","quantity":3,"unit":""}]` +
		"\n```"}
	p := NewParser(fake)

	got := p.ParseLines(context.Background(), []string{"2 cups chopped onion", "3 cloves garlic"})

	require.Len(t, got, 2)
	assert.Equal(t, ParsedIngredient{Name: "onion", Quantity: 2, Unit: "cup"}, got[0])
	// 名稱一律小寫、單位缺省補 item
	assert.Equal(t, ParsedIngredient{Name: "garlic", Quantity: 3, Unit: "item"}, got[1])
}

func TestParseLinesServiceFailureFallsBackPerLine(t *testing.T) {
	p := NewParser(&fakeCompleter{err: errors.New("service down")})

	got := p.ParseLines(context.Background(), []string{"2 Cups Flour", "A pinch of salt"})

	require.Len(t, got, 2)
	assert.Equal(t, ParsedIngredient{Name: "2 cups flour", Quantity: 1, Unit: "item"}, got[0])
	assert.Equal(t, ParsedIngredient{Name: "a pinch of salt", Quantity: 1, Unit: "item"}, got[1])
}

func TestParseLinesLengthMismatchFallsBack(t *testing.T) {
	fake := &fakeCompleter{response: `[{"name":"onion","quantity":2,"unit":"cup"}]`}
	p := NewParser(fake)

	got := p.ParseLines(context.Background(), []string{"onion", "garlic", "salt"})

	require.Len(t, got, 3)
	for i, line := range []string{"onion", "garlic", "salt"} {
		assert.Equal(t, strings.ToLower(line), got[i].Name)
		assert.Equal(t, 1.0, got[i].Quantity)
		assert.Equal(t, "item", got[i].Unit)
	}
}

func TestParseLinesInvalidEntryFallsBackForThatLineOnly(t *testing.T) {
	fake := &fakeCompleter{response: `[{"name":"","quantity":2,"unit":"cup"},{"name":"salt","quantity":-1,"unit":"g"},{"name":"pepper","quantity":0.5,"unit":"tsp"}]`}
	p := NewParser(fake)

	got := p.ParseLines(context.Background(), []string{"Mystery Thing", "salt", "pepper"})

	require.Len(t, got, 3)
	assert.Equal(t, ParsedIngredient{Name: "mystery thing", Quantity: 1, Unit: "item"}, got[0])
	assert.Equal(t, ParsedIngredient{Name: "salt", Quantity: 1, Unit: "item"}, got[1])
	assert.Equal(t, ParsedIngredient{Name: "pepper", Quantity: 0.5, Unit: "tsp"}, got[2])
}

func TestParseLinesEmptyInput(t *testing.T) {
	fake := &fakeCompleter{}
	p := NewParser(fake)

	assert.Nil(t, p.ParseLines(context.Background(), nil))
	assert.Zero(t, fake.calls)
}
