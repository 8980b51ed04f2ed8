package address

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_FirstAddressBecomesDefault(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository(nil), SampleLocalities())

	_, ok, err := svc.Preferred(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := svc.AddAddress(ctx, 7, Input{Line: "Calle 1", LocalityID: 1, NeighborhoodID: 2})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, PlaceResidential, first.PlaceType)

	second, err := svc.AddAddress(ctx, 7, Input{Line: "Calle 2", LocalityID: 1, NeighborhoodID: 1})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	pref, ok, err := svc.Preferred(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.AddressID, pref.AddressID)

	// deleting the default promotes nothing; the first remaining is preferred
	require.NoError(t, svc.DeleteAddress(ctx, 7, first.AddressID))
	addrs, _ := svc.GetAddresses(ctx, 7)
	require.Len(t, addrs, 1)
	assert.False(t, addrs[0].IsDefault)
	pref, _, _ = svc.Preferred(ctx, 7)
	assert.Equal(t, second.AddressID, pref.AddressID)
}

func TestService_PrepareValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository(nil), SampleLocalities())

	_, err := svc.Prepare(ctx, 1, Input{LocalityID: 1, NeighborhoodID: 1})
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = svc.Prepare(ctx, 1, Input{Line: "x", LocalityID: 1, NeighborhoodID: 1, PlaceType: "CASTLE"})
	assert.ErrorIs(t, err, ErrInvalidPlaceType)
	_, err = svc.Prepare(ctx, 1, Input{Line: "x", LocalityID: 5, NeighborhoodID: 1})
	assert.ErrorIs(t, err, ErrUnknownLocality)
	assert.True(t, IsValidation(err))
}

func TestFormatShipping(t *testing.T) {
	a := Address{Line: "Cra 7 # 72-10", AdditionalInfo: "Apto 301", NeighborhoodName: "Chicó", LocalityName: "Chapinero"}
	assert.Equal(t, "Cra 7 # 72-10, Apto 301, Chicó, Chapinero", FormatShipping(a))
}
