package user

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"foodgram-backend/domain"
	"foodgram-backend/pkg/jwt"
	"foodgram-backend/pkg/testutil"
)

func newService(tx *gorm.DB) UserService {
	return NewUserService(NewUserRepository(tx), jwt.NewJWTService())
}

func TestRegisterAndLogin(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	req := domain.RegisterRequest{
		Email:     "cook@example.com",
		Username:  "cook",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "secret123",
	}
	registered, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.Email != req.Email || registered.Username != req.Username {
		t.Fatalf("registered = %+v", registered)
	}

	if _, err := svc.Register(ctx, req); err != domain.ErrEmailAlreadyExists {
		t.Fatalf("duplicate register: err = %v, want ErrEmailAlreadyExists", err)
	}

	login, err := svc.Login(ctx, domain.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login returned an empty token")
	}

	if _, err := svc.Login(ctx, domain.LoginRequest{Email: req.Email, Password: "wrong"}); err != domain.ErrCredentialsInvalid {
		t.Fatalf("wrong password: err = %v, want ErrCredentialsInvalid", err)
	}
}

func TestSubscribeToggle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "subauthor@example.com")
	follower := testutil.SeedUser(t, ctx, tx, "follower@example.com")
	testutil.SeedRecipe(t, ctx, tx, author.ID, "cake")

	sub, err := svc.Subscribe(ctx, author.ID.String(), follower.ID.String(), 6)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if !sub.IsSubscribed {
		t.Fatal("subscription response has IsSubscribed false")
	}
	if sub.RecipesCount != 1 || len(sub.Recipes) != 1 {
		t.Fatalf("recipes = %+v count = %d, want the author's one recipe", sub.Recipes, sub.RecipesCount)
	}

	if _, err := svc.Subscribe(ctx, author.ID.String(), follower.ID.String(), 6); !domain.IsValidation(err) {
		t.Fatalf("repeated subscribe: err = %v, want ValidationError", err)
	}

	if err := svc.Unsubscribe(ctx, author.ID.String(), follower.ID.String()); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	// removing an absent subscription is not an error
	if err := svc.Unsubscribe(ctx, author.ID.String(), follower.ID.String()); err != nil {
		t.Fatalf("repeated unsubscribe: %v", err)
	}
	if _, err := svc.Subscribe(ctx, author.ID.String(), follower.ID.String(), 6); err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
}

func TestSelfSubscribe(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	u := testutil.SeedUser(t, ctx, tx, "narcissus@example.com")
	if _, err := svc.Subscribe(ctx, u.ID.String(), u.ID.String(), 6); !domain.IsValidation(err) {
		t.Fatalf("self subscribe: err = %v, want ValidationError", err)
	}
}

func TestGetSubscriptions(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	follower := testutil.SeedUser(t, ctx, tx, "reader@example.com")
	author1 := testutil.SeedUser(t, ctx, tx, "writer1@example.com")
	author2 := testutil.SeedUser(t, ctx, tx, "writer2@example.com")
	for i := 0; i < 3; i++ {
		testutil.SeedRecipe(t, ctx, tx, author1.ID, "dish")
	}

	if _, err := svc.Subscribe(ctx, author1.ID.String(), follower.ID.String(), 6); err != nil {
		t.Fatalf("subscribe author1: %v", err)
	}
	if _, err := svc.Subscribe(ctx, author2.ID.String(), follower.ID.String(), 6); err != nil {
		t.Fatalf("subscribe author2: %v", err)
	}

	subs, err := svc.GetSubscriptions(ctx, follower.ID.String(), 2)
	if err != nil {
		t.Fatalf("GetSubscriptions: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("len(subs) = %d, want 2", len(subs))
	}
	byID := map[string]domain.SubscriptionResponse{}
	for _, sub := range subs {
		byID[sub.ID] = sub
	}
	got1 := byID[author1.ID.String()]
	if got1.RecipesCount != 3 {
		t.Fatalf("author1 RecipesCount = %d, want 3", got1.RecipesCount)
	}
	// the recipes list is capped by the limit while the count is not
	if len(got1.Recipes) != 2 {
		t.Fatalf("author1 recipes = %d, want limit of 2", len(got1.Recipes))
	}
	if byID[author2.ID.String()].RecipesCount != 0 {
		t.Fatalf("author2 RecipesCount = %d, want 0", byID[author2.ID.String()].RecipesCount)
	}
}

func TestGetUsersSubscribedFlag(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	viewer := testutil.SeedUser(t, ctx, tx, "viewer@example.com")
	followed := testutil.SeedUser(t, ctx, tx, "followed@example.com")
	testutil.SeedUser(t, ctx, tx, "stranger@example.com")

	if _, err := svc.Subscribe(ctx, followed.ID.String(), viewer.ID.String(), 6); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	users, count, err := svc.GetUsers(ctx, 1, 20, viewer.ID.String())
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	flags := map[string]bool{}
	for _, u := range users {
		flags[u.ID] = u.IsSubscribed
	}
	if !flags[followed.ID.String()] {
		t.Fatal("followed author not flagged as subscribed")
	}
	if flags[viewer.ID.String()] {
		t.Fatal("viewer flagged as subscribed to themselves")
	}
}
