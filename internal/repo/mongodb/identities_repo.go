package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/alumniportal/internal/domain/identity"
	"github.com/geocoder89/alumniportal/internal/observability"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// identityDoc is the stored document shape. Field names match the
// collection written by earlier versions of the portal.
type identityDoc struct {
	ID          bson.ObjectID `bson:"_id"`
	UserType    string        `bson:"userType"`
	FullName    string        `bson:"fullName"`
	RollNo      string        `bson:"rollNo"`
	CollegeName string        `bson:"collegeName"`
	Department  *string       `bson:"department,omitempty"`
	CurrentRole *string       `bson:"currentRole,omitempty"`
	Address     string        `bson:"address"`
	Email       string        `bson:"email,omitempty"`
	Mobile      string        `bson:"mobile,omitempty"`
	Password    string        `bson:"password,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
}

func toDoc(id bson.ObjectID, i identity.Identity) identityDoc {
	return identityDoc{
		ID:          id,
		UserType:    string(i.UserType),
		FullName:    i.FullName,
		RollNo:      i.RollNo,
		CollegeName: i.CollegeName,
		Department:  i.Department,
		CurrentRole: i.CurrentRole,
		Address:     i.Address,
		Email:       i.Email,
		Mobile:      i.Mobile,
		Password:    i.Password,
		CreatedAt:   i.CreatedAt,
	}
}

func (d identityDoc) toIdentity() identity.Identity {
	return identity.Identity{
		ID:          d.ID.Hex(),
		UserType:    identity.UserType(d.UserType),
		FullName:    d.FullName,
		RollNo:      d.RollNo,
		CollegeName: d.CollegeName,
		Department:  d.Department,
		CurrentRole: d.CurrentRole,
		Address:     d.Address,
		Email:       d.Email,
		Mobile:      d.Mobile,
		Password:    d.Password,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type IdentitiesRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
	prom   *observability.Prom
}

func NewIdentitiesRepo(client *mongo.Client, database, collection string, prom *observability.Prom) *IdentitiesRepo {
	return &IdentitiesRepo{
		client: client,
		coll:   client.Database(database).Collection(collection),
		prom:   prom,
	}
}

func (repo *IdentitiesRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveStore(op, fn)
	}
	return fn()
}

// EnsureIndexes adds lookup indexes for login. They are not unique: the
// same contact may sign up more than once.
func (repo *IdentitiesRepo) EnsureIndexes(ctx context.Context) error {
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_lookup").SetSparse(true)},
		{Keys: bson.D{{Key: "mobile", Value: 1}}, Options: options.Index().SetName("mobile_lookup").SetSparse(true)},
	})
	if err != nil {
		return &identity.StoreError{Op: "ensure_indexes", Err: err}
	}
	return nil
}

func (repo *IdentitiesRepo) Create(ctx context.Context, req identity.CreateRequest) (identity.Identity, error) {
	if err := identity.ValidateCreate(req); err != nil {
		return identity.Identity{}, err
	}

	id := bson.NewObjectID()
	// BSON dates carry milliseconds; truncate so the returned value equals
	// what a later read yields.
	now := time.Now().UTC().Truncate(time.Millisecond)
	created := identity.NewFromCreateRequest(id.Hex(), req, now)

	err := repo.observe("identities.create", func() error {
		_, err := repo.coll.InsertOne(ctx, toDoc(id, created))
		return err
	})
	if err != nil {
		return identity.Identity{}, &identity.StoreError{Op: "create", Err: err}
	}

	return created, nil
}

func (repo *IdentitiesRepo) FindByContact(ctx context.Context, email, mobile string) (identity.Identity, error) {
	email = identity.NormalizeContact(email)
	mobile = identity.NormalizeContact(mobile)

	if err := identity.ValidateContact(email, mobile); err != nil {
		return identity.Identity{}, err
	}

	var doc identityDoc

	err := repo.observe("identities.find_by_contact", func() error {
		err := repo.coll.FindOne(ctx, contactFilter(email, mobile)).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			// a miss is an outcome, not a store failure
			return nil
		}
		return err
	})
	if err != nil {
		return identity.Identity{}, &identity.StoreError{Op: "find_by_contact", Err: err}
	}

	if doc.ID.IsZero() {
		return identity.Identity{}, identity.ErrNotFound
	}

	return doc.toIdentity(), nil
}

func (repo *IdentitiesRepo) Ping(ctx context.Context) error {
	return repo.client.Ping(ctx, readpref.Primary())
}

// contactFilter ORs only the supplied fields, so an empty email never
// matches identities that registered with an empty email.
func contactFilter(email, mobile string) bson.M {
	or := bson.A{}

	if email != "" {
		or = append(or, bson.M{"email": email})
	}

	if mobile != "" {
		or = append(or, bson.M{"mobile": mobile})
	}

	return bson.M{"$or": or}
}
