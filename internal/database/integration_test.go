//go:build integration

package database

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

func startPostgres(t *testing.T) *Database {
	t.Helper()
	skipIfNoDocker(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "foodgram",
				"POSTGRES_PASSWORD": "foodgram",
				"POSTGRES_DB":       "foodgram",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	pool, err := pgxpool.New(ctx, fmt.Sprintf("postgresql://foodgram:foodgram@%s:%s/foodgram", host, port.Port()))
	if err != nil {
		t.Fatalf("creating pool: %v", err)
	}
	t.Cleanup(pool.Close)

	db := NewDatabase(pool)
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return db
}

func TestConcurrentDuplicateFavorite(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	user, err := db.CreateUser(ctx, CreateUserParams{
		Email: "cook@example.com", Username: "cook", FirstName: "A", LastName: "B",
		PasswordHash: "x", Role: RoleUser,
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	recipe, err := db.CreateRecipe(ctx, CreateRecipeParams{
		AuthorID: user.ID, Name: "Soup", Text: "Boil", CookingTime: 10, ImageKey: "recipes/1.png",
	})
	if err != nil {
		t.Fatalf("CreateRecipe() error = %v", err)
	}

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.CreateFavorite(ctx, CreateFavoriteParams{UserID: user.ID, RecipeID: recipe.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case IsUniqueViolation(err, ""):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("got %d successful inserts, want 1", succeeded)
	}
	if conflicts != workers-1 {
		t.Errorf("got %d conflicts, want %d", conflicts, workers-1)
	}
}

func TestSelfSubscriptionRejected(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	user, err := db.CreateUser(ctx, CreateUserParams{
		Email: "self@example.com", Username: "self", FirstName: "A", LastName: "B",
		PasswordHash: "x", Role: RoleUser,
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	err = db.CreateSubscription(ctx, CreateSubscriptionParams{UserID: user.ID, FollowingID: user.ID})
	if !IsCheckViolation(err, ConstraintSubscriptionNoSelf) {
		t.Fatalf("expected check violation, got %v", err)
	}
}

func TestCartLineItemsAndLinks(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	user, err := db.CreateUser(ctx, CreateUserParams{
		Email: "cart@example.com", Username: "cart", FirstName: "A", LastName: "B",
		PasswordHash: "x", Role: RoleUser,
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	flour, err := db.CreateIngredient(ctx, CreateIngredientParams{Name: "Flour", MeasurementUnit: "g"})
	if err != nil {
		t.Fatalf("CreateIngredient() error = %v", err)
	}

	for _, amount := range []int32{200, 300} {
		recipe, err := db.CreateRecipe(ctx, CreateRecipeParams{
			AuthorID: user.ID, Name: "Bread", Text: "Bake", CookingTime: 60, ImageKey: "recipes/x.png",
		})
		if err != nil {
			t.Fatalf("CreateRecipe() error = %v", err)
		}
		err = db.AddRecipeIngredients(ctx, AddRecipeIngredientsParams{
			RecipeID: recipe.ID, IngredientIds: []int64{flour.ID}, Amounts: []int32{amount},
		})
		if err != nil {
			t.Fatalf("AddRecipeIngredients() error = %v", err)
		}
		if err := db.CreateCartEntry(ctx, CreateCartEntryParams{UserID: user.ID, RecipeID: recipe.ID}); err != nil {
			t.Fatalf("CreateCartEntry() error = %v", err)
		}

		link, err := db.CreateLink(ctx, CreateLinkParams{
			RecipeID: recipe.ID, ShortCode: fmt.Sprintf("c%d", recipe.ID), OriginalLink: "http://x/recipes/1",
		})
		if err != nil {
			t.Fatalf("CreateLink() error = %v", err)
		}
		got, err := db.GetLinkByCode(ctx, link.ShortCode)
		if err != nil || got.RecipeID != recipe.ID {
			t.Fatalf("GetLinkByCode() = %+v, %v", got, err)
		}
	}

	items, err := db.GetCartLineItems(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetCartLineItems() error = %v", err)
	}
	var total int32
	for _, item := range items {
		total += item.Amount
	}
	if len(items) != 2 || total != 500 {
		t.Errorf("got %d items totalling %d, want 2 totalling 500", len(items), total)
	}
}
