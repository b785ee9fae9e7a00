//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"clientele/internal/client/models"
	"clientele/internal/client/store/postgres"
	id "clientele/pkg/domain"
	dErrors "clientele/pkg/domain-errors"
)

type PostgresStoreSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	store     *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("clientele"),
		tcpostgres.WithUsername("clientele"),
		tcpostgres.WithPassword("clientele"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	pool, err := pgxpool.New(ctx, connStr)
	s.Require().NoError(err)
	s.pool = pool

	_, err = pool.Exec(ctx, postgres.Schema)
	s.Require().NoError(err)

	s.store = postgres.New(pool)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = s.container.Terminate(ctx)
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE TABLE clients`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newClient(surname, given string, line2 *string) models.Client {
	sn, err := models.NewPersonName(surname)
	s.Require().NoError(err)
	gn, err := models.NewPersonName(given)
	s.Require().NoError(err)
	l1, err := models.NewAddressLine("48 rue Bauducheu")
	s.Require().NoError(err)
	var l2 *models.AddressLine
	if line2 != nil {
		parsed, err := models.NewAddressLine(*line2)
		s.Require().NoError(err)
		l2 = &parsed
	}
	pc, err := models.NewPostalCode("33800")
	s.Require().NoError(err)
	city, err := models.NewCityName("Bordeaux")
	s.Require().NoError(err)
	return models.Client{
		ID:        id.NewClientID(),
		Surname:   sn,
		GivenName: gn,
		Address:   models.NewAddress(l1, l2, pc, city),
		Situation: models.Single,
		Children:  0,
	}
}

func (s *PostgresStoreSuite) TestPersistAndFindRoundTrip() {
	ctx := context.Background()
	apt := "Apt 4"
	c := s.newClient("Bousquet", "Philippe", &apt)

	saved, err := s.store.Persist(ctx, c)
	s.Require().NoError(err)
	s.Equal(c.ID, saved.ID)

	found, err := s.store.Find(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Surname, found.Surname)
	s.True(c.Address.Equal(found.Address), "line2 presence survives the round trip")
}

func (s *PostgresStoreSuite) TestFindUnknownIsNotFound() {
	_, err := s.store.Find(context.Background(), id.NewClientID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresStoreSuite) TestPersistUpsertsExistingRecord() {
	ctx := context.Background()
	c := s.newClient("Bousquet", "Philippe", nil)

	_, err := s.store.Persist(ctx, c)
	s.Require().NoError(err)

	updated := c.WithFamilySituation(models.Married, 2)
	_, err = s.store.Persist(ctx, updated)
	s.Require().NoError(err)

	found, err := s.store.Find(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.Married, found.Situation)
	s.Equal(2, found.Children.Int())

	list, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(list, 1, "upsert must not duplicate the row")
}

func (s *PostgresStoreSuite) TestListOrdersByName() {
	ctx := context.Background()
	for _, names := range [][2]string{
		{"Zimmermann", "Anna"},
		{"Bousquet", "Philippe"},
		{"Bousquet", "Alice"},
	} {
		_, err := s.store.Persist(ctx, s.newClient(names[0], names[1], nil))
		s.Require().NoError(err)
	}

	list, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("Alice", list[0].GivenName.String())
	s.Equal("Philippe", list[1].GivenName.String())
	s.Equal("Zimmermann", list[2].Surname.String())
}

func (s *PostgresStoreSuite) TestDeleteIsIdempotent() {
	ctx := context.Background()
	c := s.newClient("Bousquet", "Philippe", nil)

	_, err := s.store.Persist(ctx, c)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(ctx, c.ID))
	s.Require().NoError(s.store.Delete(ctx, c.ID))

	_, err = s.store.Find(ctx, c.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
