package handler

import (
	"clientele/internal/client/models"
	id "clientele/pkg/domain"
)

// ClientRequest is the flat wire form of a full client record.
type ClientRequest struct {
	Surname         string  `json:"surname"`
	GivenName       string  `json:"given_name"`
	Line1           string  `json:"line1"`
	Line2           *string `json:"line2,omitempty"`
	PostalCode      string  `json:"postal_code"`
	City            string  `json:"city"`
	FamilySituation string  `json:"family_situation"`
	Children        int     `json:"children"`
}

// ToDomain validates the request into a client record. The returned client
// carries no id; the service assigns or preserves identity.
func (r ClientRequest) ToDomain() (models.Client, error) {
	surname, err := models.NewPersonName(r.Surname)
	if err != nil {
		return models.Client{}, err
	}
	givenName, err := models.NewPersonName(r.GivenName)
	if err != nil {
		return models.Client{}, err
	}
	addr, err := AddressRequest{
		Line1:      r.Line1,
		Line2:      r.Line2,
		PostalCode: r.PostalCode,
		City:       r.City,
	}.ToDomain()
	if err != nil {
		return models.Client{}, err
	}
	situation, err := models.ParseFamilySituation(r.FamilySituation)
	if err != nil {
		return models.Client{}, err
	}
	children, err := models.NewChildrenCount(r.Children)
	if err != nil {
		return models.Client{}, err
	}
	return models.Client{
		Surname:   surname,
		GivenName: givenName,
		Address:   addr,
		Situation: situation,
		Children:  children,
	}, nil
}

// AddressRequest is the wire form of an address on its own.
type AddressRequest struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	PostalCode string  `json:"postal_code"`
	City       string  `json:"city"`
}

// ToDomain validates the request into an address value.
func (r AddressRequest) ToDomain() (models.Address, error) {
	line1, err := models.NewAddressLine(r.Line1)
	if err != nil {
		return models.Address{}, err
	}
	var line2 *models.AddressLine
	if r.Line2 != nil {
		l2, err := models.NewAddressLine(*r.Line2)
		if err != nil {
			return models.Address{}, err
		}
		line2 = &l2
	}
	postalCode, err := models.NewPostalCode(r.PostalCode)
	if err != nil {
		return models.Address{}, err
	}
	city, err := models.NewCityName(r.City)
	if err != nil {
		return models.Address{}, err
	}
	return models.NewAddress(line1, line2, postalCode, city), nil
}

// SituationRequest is the wire form of a family-situation change.
type SituationRequest struct {
	FamilySituation string `json:"family_situation"`
	Children        int    `json:"children"`
}

// ClientResponse is the wire form of a stored client record.
type ClientResponse struct {
	ID              id.ClientID `json:"id"`
	Surname         string      `json:"surname"`
	GivenName       string      `json:"given_name"`
	Line1           string      `json:"line1"`
	Line2           *string     `json:"line2,omitempty"`
	PostalCode      string      `json:"postal_code"`
	City            string      `json:"city"`
	FamilySituation string      `json:"family_situation"`
	Children        int         `json:"children"`
}

func toResponse(c models.Client) ClientResponse {
	var line2 *string
	if c.Address.Line2 != nil {
		l2 := c.Address.Line2.String()
		line2 = &l2
	}
	return ClientResponse{
		ID:              c.ID,
		Surname:         c.Surname.String(),
		GivenName:       c.GivenName.String(),
		Line1:           c.Address.Line1.String(),
		Line2:           line2,
		PostalCode:      c.Address.PostalCode.String(),
		City:            c.Address.City.String(),
		FamilySituation: c.Situation.String(),
		Children:        c.Children.Int(),
	}
}

func toResponses(clients []models.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toResponse(c))
	}
	return out
}
