package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/alumniportal/internal/db"
	"github.com/geocoder89/alumniportal/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestContactFilter_OnlySuppliedFields(t *testing.T) {
	f := contactFilter("", "9999999999")

	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 1)
	assert.Equal(t, bson.M{"mobile": "9999999999"}, or[0])

	f = contactFilter("asha@x.com", "9999999999")
	assert.Len(t, f["$or"].(bson.A), 2)
}

func TestDocRoundTrip_KeepsVariantFields(t *testing.T) {
	dept := "CSE"
	id := bson.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	in := identity.Identity{
		ID:         id.Hex(),
		UserType:   identity.Student,
		FullName:   "Asha",
		Department: &dept,
		Email:      "asha@x.com",
		CreatedAt:  now,
	}

	raw, err := bson.Marshal(toDoc(id, in))
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.NotContains(t, m, "currentRole")
	assert.NotContains(t, m, "mobile")
	assert.Equal(t, "student", m["userType"])

	var doc identityDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, in, doc.toIdentity())
}

// The tests below need a live MongoDB, e.g.
// TEST_MONGO_URI=mongodb://127.0.0.1:27017 go test ./internal/repo/mongodb
func newIntegrationRepo(t *testing.T) *IdentitiesRepo {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	client, err := db.NewMongoClient(ctx, uri)
	require.NoError(t, err)

	dbName := "alumni_portal_test_" + bson.NewObjectID().Hex()
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo := NewIdentitiesRepo(client, dbName, "users", nil)
	require.NoError(t, repo.EnsureIndexes(ctx))
	require.NoError(t, repo.EnsureIndexes(ctx), "index creation must be repeatable")

	return repo
}

func TestIdentitiesRepoIntegration_CreateAndFind(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, identity.StudentSignup{
		FullName:    "Asha",
		RollNo:      "21CS01",
		CollegeName: "ABC",
		Department:  "CSE",
		Address:     "X",
		Email:       "asha@x.com",
	}.CreateRequest())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	found, err := repo.FindByContact(ctx, "asha@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = repo.FindByContact(ctx, "nobody@x.com", "")
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestIdentitiesRepoIntegration_MobileOnlyAndDuplicates(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	req := identity.AlumniSignup{FullName: "Ravi", CurrentRole: "SDE", Mobile: "9999999999"}.CreateRequest()

	first, err := repo.Create(ctx, req)
	require.NoError(t, err)
	second, err := repo.Create(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	found, err := repo.FindByContact(ctx, "", "9999999999")
	require.NoError(t, err)
	assert.Equal(t, identity.Alumni, found.UserType)
	assert.Nil(t, found.Department)

	_, err = repo.FindByContact(ctx, "", "")
	assert.ErrorIs(t, err, identity.ErrMissingContact)
}
