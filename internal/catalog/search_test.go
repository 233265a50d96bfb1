package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchFixture() []Store {
	c := NewCatalog()
	Seed(c)
	c.AddStore("Corner Bakery", 0.3, 4.9)
	return c.Stores()
}

func Test_FilterStores_EmptyQueryReturnsAllUnchanged(t *testing.T) {
	// given
	stores := searchFixture()

	// when
	filtered := FilterStores(stores, "")

	// then
	assert.Equal(t, stores, filtered)
}

func Test_FilterStores_CaseInsensitiveStoreName(t *testing.T) {
	stores := searchFixture()

	for _, query := range []string{"mike", "MIKE", "Mike"} {
		t.Run(query, func(t *testing.T) {
			// when
			filtered := FilterStores(stores, query)

			// then
			require.Len(t, filtered, 1)
			assert.Equal(t, "Mike's Electronics", filtered[0].Name)
		})
	}
}

func Test_FilterStores_ProductNameMatchesWholeStore(t *testing.T) {
	// given
	stores := searchFixture()

	// when
	filtered := FilterStores(stores, "smart watch")

	// then: the store is returned whole, not just the matching product
	require.Len(t, filtered, 1)
	assert.Equal(t, "Mike's Electronics", filtered[0].Name)
	assert.Len(t, filtered[0].Products, 3)
}

func Test_FilterStores_NoMatch(t *testing.T) {
	// given
	stores := searchFixture()

	// when
	filtered := FilterStores(stores, "submarine")

	// then
	assert.Empty(t, filtered)
}

func Test_FilterStores_DoesNotMutateInput(t *testing.T) {
	// given
	stores := searchFixture()
	snapshot := make([]Store, len(stores))
	copy(snapshot, stores)

	// when
	_ = FilterStores(stores, "charger")

	// then
	assert.Equal(t, snapshot, stores)
}
