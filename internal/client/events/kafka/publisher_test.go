package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientele/internal/client/models"
	id "clientele/pkg/domain"
)

func testEvent(t *testing.T, line2 *string) models.AddressChanged {
	t.Helper()
	surname, err := models.NewPersonName("Bousquet")
	require.NoError(t, err)
	given, err := models.NewPersonName("Philippe")
	require.NoError(t, err)
	l1, err := models.NewAddressLine("48 rue Bauducheu")
	require.NoError(t, err)
	var l2 *models.AddressLine
	if line2 != nil {
		parsed, err := models.NewAddressLine(*line2)
		require.NoError(t, err)
		l2 = &parsed
	}
	pc, err := models.NewPostalCode("33800")
	require.NoError(t, err)
	city, err := models.NewCityName("Bordeaux")
	require.NoError(t, err)
	return models.AddressChanged{
		ClientID:  id.NewClientID(),
		Recipient: models.Recipient{Surname: surname, GivenName: given},
		Address:   models.NewAddress(l1, l2, pc, city),
	}
}

func TestMarshalEvent_Shape(t *testing.T) {
	event := testEvent(t, nil)

	data, err := marshalEvent(event)
	require.NoError(t, err)

	expected := `{
		"clientId": "` + event.ClientID.String() + `",
		"address": {
			"recipient": "Bousquet Philippe",
			"line1": "48 rue Bauducheu",
			"postalCode": "33800",
			"city": "Bordeaux"
		}
	}`
	assert.JSONEq(t, expected, string(data))
}

func TestMarshalEvent_IncludesLine2WhenPresent(t *testing.T) {
	apt := "Apt 4"
	event := testEvent(t, &apt)

	data, err := marshalEvent(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"line2":"Apt 4"`)
}

func TestMarshalEvent_OmitsLine2WhenAbsent(t *testing.T) {
	event := testEvent(t, nil)

	data, err := marshalEvent(event)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "line2")
}
