// Package postgres provides the pgx-backed ClientStore.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clientele/internal/client/models"
	id "clientele/pkg/domain"
	dErrors "clientele/pkg/domain-errors"
)

// Store persists client records in the clients table. Persist is a single
// upsert statement, so each write is atomic at the database level: either
// the whole record lands or the prior row is untouched.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store over an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Schema is the DDL for the clients table. Applied by deployment tooling
// and by the integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS clients (
	id               UUID PRIMARY KEY,
	surname          TEXT NOT NULL,
	given_name       TEXT NOT NULL,
	line1            TEXT NOT NULL,
	line2            TEXT,
	postal_code      TEXT NOT NULL,
	city             TEXT NOT NULL,
	family_situation TEXT NOT NULL,
	children         INT  NOT NULL
)`

const selectColumns = `id, surname, given_name, line1, line2, postal_code, city, family_situation, children`

// List returns every record ordered by surname then given name.
func (s *Store) List(ctx context.Context) ([]models.Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM clients ORDER BY surname, given_name`)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list clients")
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list clients")
	}
	return out, nil
}

// Find returns the record for the id, or a not-found error.
func (s *Store) Find(ctx context.Context, clientID id.ClientID) (models.Client, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM clients WHERE id = $1`, clientID.String())
	return scanClient(row)
}

// Persist upserts the whole record in one statement.
func (s *Store) Persist(ctx context.Context, c models.Client) (models.Client, error) {
	if c.ID.IsNil() {
		return models.Client{}, dErrors.New(dErrors.CodeInvalidInput, "client id is required")
	}

	var line2 *string
	if c.Address.Line2 != nil {
		v := c.Address.Line2.String()
		line2 = &v
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO clients (id, surname, given_name, line1, line2, postal_code, city, family_situation, children)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			surname          = EXCLUDED.surname,
			given_name       = EXCLUDED.given_name,
			line1            = EXCLUDED.line1,
			line2            = EXCLUDED.line2,
			postal_code      = EXCLUDED.postal_code,
			city             = EXCLUDED.city,
			family_situation = EXCLUDED.family_situation,
			children         = EXCLUDED.children`,
		c.ID.String(),
		c.Surname.String(),
		c.GivenName.String(),
		c.Address.Line1.String(),
		line2,
		c.Address.PostalCode.String(),
		c.Address.City.String(),
		c.Situation.String(),
		c.Children.Int(),
	)
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist client")
	}
	return c, nil
}

// Delete removes the record. Deleting an absent id is a no-op.
func (s *Store) Delete(ctx context.Context, clientID id.ClientID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, clientID.String()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete client")
	}
	return nil
}

// scanClient rebuilds a domain record from a row through the validating
// constructors. A row that fails validation means corrupt storage and
// surfaces as an internal error, never as a caller fault.
func scanClient(row pgx.Row) (models.Client, error) {
	var (
		rawID        string
		rawSurname   string
		rawGivenName string
		rawLine1     string
		rawLine2     *string
		rawPostal    string
		rawCity      string
		rawSituation string
		rawChildren  int
	)
	if err := row.Scan(&rawID, &rawSurname, &rawGivenName, &rawLine1, &rawLine2,
		&rawPostal, &rawCity, &rawSituation, &rawChildren); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Client{}, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "scan client row")
	}

	clientID, err := id.ParseClientID(rawID)
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "stored client id is corrupt")
	}
	surname, err := models.NewPersonName(rawSurname)
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "stored surname is corrupt")
	}
	givenName, err := models.NewPersonName(rawGivenName)
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "stored given name is corrupt")
	}
	line1, err := models.NewAddressLine(rawLine1)
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "stored address line is corrupt")
	}
	var line2 *models.AddressLine
	if rawLine2 != nil {
		parsed, err := models.NewAddressLine(*rawLine2)
		if err != nil {
			return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "stored address line is corrupt")
		}
		line2 = &parsed
	}
	postal, err := models.NewPostalCode(rawPostal)
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "stored postal code is corrupt")
	}
	city, err := models.NewCityName(rawCity)
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "stored city is corrupt")
	}
	situation, err := models.ParseFamilySituation(rawSituation)
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "stored family situation is corrupt")
	}
	children, err := models.NewChildrenCount(rawChildren)
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "stored children count is corrupt")
	}

	return models.Client{
		ID:        clientID,
		Surname:   surname,
		GivenName: givenName,
		Address:   models.NewAddress(line1, line2, postal, city),
		Situation: situation,
		Children:  children,
	}, nil
}
