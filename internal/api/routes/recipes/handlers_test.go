package recipes

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/mock/gomock"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/pagination"
	"github.com/matt-dz/foodgram/internal/api/token"
	"github.com/matt-dz/foodgram/internal/api/views"
	"github.com/matt-dz/foodgram/internal/database"
	"github.com/matt-dz/foodgram/internal/env"
	"github.com/matt-dz/foodgram/internal/fileserver"
	"github.com/matt-dz/foodgram/internal/filestore"
	"github.com/matt-dz/foodgram/internal/jwt"
	"github.com/matt-dz/foodgram/internal/role"
	"github.com/matt-dz/foodgram/internal/shortlink"
)

var pngImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))

func newTestEnv(t *testing.T) (*env.Env, *database.MockQuerier) {
	t.Helper()
	mockDB := database.NewMockQuerier(gomock.NewController(t))
	e := env.New(nil)
	e.Database = &database.Database{Querier: mockDB}
	e.FileStore = filestore.New(fileserver.New(t.TempDir()), filestore.KeyPrefix, "http://foodgram.example")
	return e, mockDB
}

type actor struct {
	id   int64
	role role.Role
}

// serve routes one request through pattern. A nil actor sends the request
// anonymously.
func serve(e *env.Env, method, pattern, target, body string, a *actor, handler http.HandlerFunc) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.MethodFunc(method, pattern, handler)

	r := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := env.WithCtx(r.Context(), e)
	if a != nil {
		ctx = token.UserIDWithCtx(ctx, a.id)
		ctx = token.ClaimsWithCtx(ctx, &jwt.Claims{
			Role:             a.role.String(),
			RegisteredClaims: gojwt.RegisteredClaims{Subject: strconv.FormatInt(a.id, 10)},
		})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r.WithContext(ctx))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) apiError.ErrorCode {
	t.Helper()
	var body apiError.Error
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Code
}

// expectRender expects the queries made when rendering recipes for a
// viewer.
func expectRender(mockDB *database.MockQuerier, authenticated bool) {
	mockDB.EXPECT().GetRecipesIngredients(gomock.Any(), gomock.Any()).Return(nil, nil)
	mockDB.EXPECT().GetRecipesTags(gomock.Any(), gomock.Any()).Return(nil, nil)
	mockDB.EXPECT().GetUsersByIDs(gomock.Any(), gomock.Any()).Return([]database.User{{ID: 1, Username: "anna"}}, nil)
	if authenticated {
		mockDB.EXPECT().CheckSubscriptions(gomock.Any(), gomock.Any()).Return(nil, nil)
		mockDB.EXPECT().GetRecipeFlags(gomock.Any(), gomock.Any()).Return(nil, nil)
	}
}

func TestListRecipes(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		actor      *actor
		wantFilter func(*testing.T, database.RecipeFilter)
	}{
		{
			name:   "anonymous ignores personal filters",
			target: "/api/recipes/?is_favorited=1&is_in_shopping_cart=1&tags=breakfast&tags=lunch&author=3",
			wantFilter: func(t *testing.T, f database.RecipeFilter) {
				if f.FavoritedBy != nil || f.InCartOf != nil {
					t.Errorf("personal filters applied for anonymous viewer: %+v", f)
				}
				if f.AuthorID == nil || *f.AuthorID != 3 || len(f.TagSlugs) != 2 {
					t.Errorf("unexpected filter %+v", f)
				}
			},
		},
		{
			name:   "favorites of the caller",
			target: "/api/recipes/?is_favorited=1&limit=2&page=2",
			actor:  &actor{id: 5, role: role.RoleUser},
			wantFilter: func(t *testing.T, f database.RecipeFilter) {
				if f.FavoritedBy == nil || *f.FavoritedBy != 5 || f.InCartOf != nil {
					t.Errorf("unexpected personal filters %+v", f)
				}
				if f.Limit != 2 || f.Offset != 2 {
					t.Errorf("unexpected window %+v", f)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mockDB := newTestEnv(t)
			mockDB.EXPECT().CountRecipes(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, f database.RecipeFilter) (int64, error) {
					tt.wantFilter(t, f)
					return 1, nil
				})
			mockDB.EXPECT().ListRecipes(gomock.Any(), gomock.Any()).
				Return([]database.Recipe{{ID: 10, AuthorID: 1, Name: "Borscht"}}, nil)
			expectRender(mockDB, tt.actor != nil)

			rec := serve(e, http.MethodGet, "/api/recipes/", tt.target, "", tt.actor, ListRecipes)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			var page pagination.Page[views.Recipe]
			if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
				t.Fatal(err)
			}
			if page.Count != 1 || len(page.Results) != 1 || page.Results[0].Author.Username != "anna" {
				t.Errorf("unexpected page %+v", page)
			}
		})
	}
}

func TestGetRecipe_NotFound(t *testing.T) {
	e, mockDB := newTestEnv(t)
	mockDB.EXPECT().GetRecipe(gomock.Any(), int64(404)).Return(database.Recipe{}, pgx.ErrNoRows)

	rec := serve(e, http.MethodGet, "/api/recipes/{id}/", "/api/recipes/404/", "", nil, GetRecipe)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != apiError.RecipeNotFound {
		t.Errorf("code = %q", code)
	}
}

func recipeBody(image, ingredients, tags string, cookingTime int) string {
	return `{"ingredients":` + ingredients + `,"tags":` + tags + `,"image":"` + image +
		`","name":"Borscht","text":"Boil the beets","cooking_time":` + strconv.Itoa(cookingTime) + `}`
}

func TestCreateRecipe(t *testing.T) {
	user := &actor{id: 1, role: role.RoleUser}

	tests := []struct {
		name       string
		body       string
		actor      *actor
		setup      func(*testing.T, *database.MockQuerier)
		wantStatus int
		wantCode   apiError.ErrorCode
	}{
		{
			name:  "created",
			body:  recipeBody(pngImage, `[{"id":1,"amount":300},{"id":2,"amount":1}]`, `[1]`, 90),
			actor: user,
			setup: func(t *testing.T, mockDB *database.MockQuerier) {
				mockDB.EXPECT().CountExistingIngredients(gomock.Any(), []int64{1, 2}).Return(int64(2), nil)
				mockDB.EXPECT().CountExistingTags(gomock.Any(), []int64{1}).Return(int64(1), nil)
				mockDB.EXPECT().CreateRecipe(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p database.CreateRecipeParams) (database.Recipe, error) {
						if p.AuthorID != 1 || p.CookingTime != 90 || !strings.HasPrefix(p.ImageKey, "/media/recipes/") {
							t.Errorf("unexpected params %+v", p)
						}
						return database.Recipe{ID: 10, AuthorID: 1, Name: p.Name, ImageKey: p.ImageKey}, nil
					})
				mockDB.EXPECT().
					AddRecipeIngredients(gomock.Any(), database.AddRecipeIngredientsParams{
						RecipeID:      10,
						IngredientIds: []int64{1, 2},
						Amounts:       []int32{300, 1},
					}).
					Return(nil)
				mockDB.EXPECT().
					AddRecipeTags(gomock.Any(), database.AddRecipeTagsParams{RecipeID: 10, TagIds: []int64{1}}).
					Return(nil)
				expectRender(mockDB, true)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "anonymous",
			body:       recipeBody(pngImage, `[{"id":1,"amount":1}]`, `[1]`, 5),
			wantStatus: http.StatusUnauthorized,
			wantCode:   apiError.AuthenticationRequired,
		},
		{
			name:       "no ingredients",
			body:       recipeBody(pngImage, `[]`, `[1]`, 5),
			actor:      user,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.ValidationError,
		},
		{
			name:       "duplicate ingredient",
			body:       recipeBody(pngImage, `[{"id":1,"amount":1},{"id":1,"amount":2}]`, `[1]`, 5),
			actor:      user,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.ValidationError,
		},
		{
			name:       "zero amount",
			body:       recipeBody(pngImage, `[{"id":1,"amount":0}]`, `[1]`, 5),
			actor:      user,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.ValidationError,
		},
		{
			name:       "duplicate tag",
			body:       recipeBody(pngImage, `[{"id":1,"amount":1}]`, `[1,1]`, 5),
			actor:      user,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.ValidationError,
		},
		{
			name:       "zero cooking time",
			body:       recipeBody(pngImage, `[{"id":1,"amount":1}]`, `[1]`, 0),
			actor:      user,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.ValidationError,
		},
		{
			name:  "unknown ingredient",
			body:  recipeBody(pngImage, `[{"id":1,"amount":1},{"id":99,"amount":1}]`, `[1]`, 5),
			actor: user,
			setup: func(t *testing.T, mockDB *database.MockQuerier) {
				mockDB.EXPECT().CountExistingIngredients(gomock.Any(), []int64{1, 99}).Return(int64(1), nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.ValidationError,
		},
		{
			name:  "unknown tag",
			body:  recipeBody(pngImage, `[{"id":1,"amount":1}]`, `[7]`, 5),
			actor: user,
			setup: func(t *testing.T, mockDB *database.MockQuerier) {
				mockDB.EXPECT().CountExistingIngredients(gomock.Any(), gomock.Any()).Return(int64(1), nil)
				mockDB.EXPECT().CountExistingTags(gomock.Any(), []int64{7}).Return(int64(0), nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.ValidationError,
		},
		{
			name:  "missing image",
			body:  recipeBody("", `[{"id":1,"amount":1}]`, `[1]`, 5),
			actor: user,
			setup: func(t *testing.T, mockDB *database.MockQuerier) {
				mockDB.EXPECT().CountExistingIngredients(gomock.Any(), gomock.Any()).Return(int64(1), nil)
				mockDB.EXPECT().CountExistingTags(gomock.Any(), gomock.Any()).Return(int64(1), nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.InvalidImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mockDB := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(t, mockDB)
			}

			rec := serve(e, http.MethodPost, "/api/recipes/", "/api/recipes/", tt.body, tt.actor, CreateRecipe)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
			}
		})
	}
}

func TestUpdateRecipe(t *testing.T) {
	existing := database.Recipe{ID: 10, AuthorID: 1, Name: "Borscht", ImageKey: "/media/recipes/old.png"}
	body := recipeBody("", `[{"id":2,"amount":5}]`, `[3]`, 45)

	tests := []struct {
		name       string
		method     string
		actor      *actor
		wantStatus int
		wantCode   apiError.ErrorCode
	}{
		{name: "author patches", method: http.MethodPatch, actor: &actor{id: 1, role: role.RoleUser}, wantStatus: http.StatusOK},
		{name: "admin puts", method: http.MethodPut, actor: &actor{id: 9, role: role.RoleAdmin}, wantStatus: http.StatusOK},
		{
			name:       "other user",
			method:     http.MethodPatch,
			actor:      &actor{id: 2, role: role.RoleUser},
			wantStatus: http.StatusForbidden,
			wantCode:   apiError.RecipeNotOwned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mockDB := newTestEnv(t)
			mockDB.EXPECT().GetRecipe(gomock.Any(), int64(10)).Return(existing, nil)
			if tt.wantStatus == http.StatusOK {
				mockDB.EXPECT().CountExistingIngredients(gomock.Any(), []int64{2}).Return(int64(1), nil)
				mockDB.EXPECT().CountExistingTags(gomock.Any(), []int64{3}).Return(int64(1), nil)
				mockDB.EXPECT().
					UpdateRecipe(gomock.Any(), database.UpdateRecipeParams{
						ID:          10,
						Name:        "Borscht",
						Text:        "Boil the beets",
						CookingTime: 45,
						ImageKey:    existing.ImageKey,
					}).
					Return(existing, nil)
				gomock.InOrder(
					mockDB.EXPECT().DeleteRecipeIngredients(gomock.Any(), int64(10)).Return(nil),
					mockDB.EXPECT().AddRecipeIngredients(gomock.Any(), gomock.Any()).Return(nil),
				)
				gomock.InOrder(
					mockDB.EXPECT().DeleteRecipeTags(gomock.Any(), int64(10)).Return(nil),
					mockDB.EXPECT().AddRecipeTags(gomock.Any(), gomock.Any()).Return(nil),
				)
				expectRender(mockDB, true)
			}

			rec := serve(e, tt.method, "/api/recipes/{id}/", "/api/recipes/10/", body, tt.actor, UpdateRecipe)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
			}
		})
	}
}

func TestDeleteRecipe(t *testing.T) {
	tests := []struct {
		name       string
		actor      *actor
		wantStatus int
	}{
		{name: "author", actor: &actor{id: 1, role: role.RoleUser}, wantStatus: http.StatusNoContent},
		{name: "stranger", actor: &actor{id: 2, role: role.RoleUser}, wantStatus: http.StatusForbidden},
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mockDB := newTestEnv(t)
			if tt.actor != nil {
				mockDB.EXPECT().GetRecipe(gomock.Any(), int64(10)).
					Return(database.Recipe{ID: 10, AuthorID: 1, ImageKey: "/media/recipes/x.png"}, nil)
			}
			if tt.wantStatus == http.StatusNoContent {
				mockDB.EXPECT().GetLinkByRecipe(gomock.Any(), int64(10)).Return(database.Link{}, pgx.ErrNoRows)
				mockDB.EXPECT().DeleteRecipe(gomock.Any(), int64(10)).Return(nil)
			}

			rec := serve(e, http.MethodDelete, "/api/recipes/{id}/", "/api/recipes/10/", "", tt.actor, DeleteRecipe)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestDeleteRecipe_EvictsShortLink(t *testing.T) {
	e, mockDB := newTestEnv(t)
	link := database.Link{RecipeID: 10, ShortCode: "abc123", OriginalLink: "http://localhost:8080/recipes/10"}

	mockDB.EXPECT().GetLinkByCode(gomock.Any(), "abc123").Return(link, nil).Times(1)
	mockDB.EXPECT().GetLinkByCode(gomock.Any(), "abc123").Return(database.Link{}, pgx.ErrNoRows)
	mockDB.EXPECT().GetRecipe(gomock.Any(), int64(10)).
		Return(database.Recipe{ID: 10, AuthorID: 1, ImageKey: "/media/recipes/x.png"}, nil)
	mockDB.EXPECT().GetLinkByRecipe(gomock.Any(), int64(10)).Return(link, nil)
	mockDB.EXPECT().DeleteRecipe(gomock.Any(), int64(10)).Return(nil)

	ctx := context.Background()
	if _, err := e.ShortLinks().Resolve(ctx, "abc123"); err != nil {
		t.Fatalf("Resolve() before delete error = %v", err)
	}

	rec := serve(e, http.MethodDelete, "/api/recipes/{id}/", "/api/recipes/10/", "", &actor{id: 1, role: role.RoleUser}, DeleteRecipe)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	if _, err := e.ShortLinks().Resolve(ctx, "abc123"); !errors.Is(err, shortlink.ErrNotFound) {
		t.Errorf("Resolve() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRecipe_LinkLookupFails(t *testing.T) {
	e, mockDB := newTestEnv(t)
	mockDB.EXPECT().GetRecipe(gomock.Any(), int64(10)).
		Return(database.Recipe{ID: 10, AuthorID: 1}, nil)
	mockDB.EXPECT().GetLinkByRecipe(gomock.Any(), int64(10)).Return(database.Link{}, errors.New("connection reset"))

	rec := serve(e, http.MethodDelete, "/api/recipes/{id}/", "/api/recipes/10/", "", &actor{id: 1, role: role.RoleUser}, DeleteRecipe)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRecipeRelations(t *testing.T) {
	user := &actor{id: 1, role: role.RoleUser}
	duplicate := &pgconn.PgError{Code: "23505", ConstraintName: "favorites_user_recipe_key"}

	tests := []struct {
		name       string
		method     string
		pattern    string
		handler    http.HandlerFunc
		setup      func(*database.MockQuerier)
		wantStatus int
		wantCode   apiError.ErrorCode
	}{
		{
			name:    "favorite",
			method:  http.MethodPost,
			pattern: "/api/recipes/{id}/favorite/",
			handler: AddFavorite,
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().RecipeExists(gomock.Any(), int64(10)).Return(true, nil)
				mockDB.EXPECT().CreateFavorite(gomock.Any(), database.CreateFavoriteParams{UserID: 1, RecipeID: 10}).Return(nil)
				mockDB.EXPECT().GetRecipe(gomock.Any(), int64(10)).
					Return(database.Recipe{ID: 10, Name: "Borscht", CookingTime: 90, ImageKey: "/media/recipes/b.png"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:    "favorite twice",
			method:  http.MethodPost,
			pattern: "/api/recipes/{id}/favorite/",
			handler: AddFavorite,
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().RecipeExists(gomock.Any(), int64(10)).Return(true, nil)
				mockDB.EXPECT().CreateFavorite(gomock.Any(), gomock.Any()).Return(duplicate)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.AlreadyFavorited,
		},
		{
			name:    "unfavorite missing row",
			method:  http.MethodDelete,
			pattern: "/api/recipes/{id}/favorite/",
			handler: RemoveFavorite,
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().RecipeExists(gomock.Any(), int64(10)).Return(true, nil)
				mockDB.EXPECT().DeleteFavorite(gomock.Any(), gomock.Any()).Return(int64(0), nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.NotFavorited,
		},
		{
			name:    "favorite recipe deleted mid-request",
			method:  http.MethodPost,
			pattern: "/api/recipes/{id}/favorite/",
			handler: AddFavorite,
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().RecipeExists(gomock.Any(), int64(10)).Return(true, nil)
				mockDB.EXPECT().CreateFavorite(gomock.Any(), gomock.Any()).
					Return(&pgconn.PgError{Code: "23503", ConstraintName: "favorites_recipe_id_fkey"})
			},
			wantStatus: http.StatusNotFound,
			wantCode:   apiError.RecipeNotFound,
		},
		{
			name:    "cart missing recipe",
			method:  http.MethodPost,
			pattern: "/api/recipes/{id}/shopping_cart/",
			handler: AddToCart,
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().RecipeExists(gomock.Any(), int64(10)).Return(false, nil)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   apiError.RecipeNotFound,
		},
		{
			name:    "remove from cart",
			method:  http.MethodDelete,
			pattern: "/api/recipes/{id}/shopping_cart/",
			handler: RemoveFromCart,
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().RecipeExists(gomock.Any(), int64(10)).Return(true, nil)
				mockDB.EXPECT().DeleteCartEntry(gomock.Any(), database.DeleteCartEntryParams{UserID: 1, RecipeID: 10}).
					Return(int64(1), nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:    "cart twice",
			method:  http.MethodPost,
			pattern: "/api/recipes/{id}/shopping_cart/",
			handler: AddToCart,
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().RecipeExists(gomock.Any(), int64(10)).Return(true, nil)
				mockDB.EXPECT().CreateCartEntry(gomock.Any(), gomock.Any()).
					Return(&pgconn.PgError{Code: "23505", ConstraintName: "shopping_cart_user_recipe_key"})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.AlreadyInCart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mockDB := newTestEnv(t)
			tt.setup(mockDB)

			target := strings.Replace(tt.pattern, "{id}", "10", 1)
			rec := serve(e, tt.method, tt.pattern, target, "", user, tt.handler)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
				return
			}
			if tt.wantStatus == http.StatusCreated {
				var short views.RecipeShort
				if err := json.NewDecoder(rec.Body).Decode(&short); err != nil {
					t.Fatal(err)
				}
				if short.ID != 10 || short.Image != "http://foodgram.example/media/recipes/b.png" {
					t.Errorf("unexpected short recipe %+v", short)
				}
			}
		})
	}
}

func TestDownloadShoppingCart(t *testing.T) {
	e, mockDB := newTestEnv(t)
	mockDB.EXPECT().GetUserByID(gomock.Any(), int64(1)).Return(database.User{ID: 1, Username: "anna"}, nil)
	mockDB.EXPECT().GetCartLineItems(gomock.Any(), int64(1)).Return([]database.GetCartLineItemsRow{
		{IngredientID: 1, Name: "Мука", MeasurementUnit: "г", Amount: 200},
		{IngredientID: 1, Name: "Мука", MeasurementUnit: "г", Amount: 300},
		{IngredientID: 2, Name: "Яйца", MeasurementUnit: "шт", Amount: 2},
	}, nil)

	rec := serve(e, http.MethodGet, "/api/recipes/download_shopping_cart/", "/api/recipes/download_shopping_cart/",
		"", &actor{id: 1, role: role.RoleUser}, DownloadShoppingCart)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	want := "Список покупок\n- Мука (г) - 500\n- Яйца (шт) - 2\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="anna_shopping_list.txt"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestDownloadShoppingCart_Empty(t *testing.T) {
	e, mockDB := newTestEnv(t)
	mockDB.EXPECT().GetUserByID(gomock.Any(), int64(1)).Return(database.User{ID: 1, Username: "anna"}, nil)
	mockDB.EXPECT().GetCartLineItems(gomock.Any(), int64(1)).Return(nil, nil)

	rec := serve(e, http.MethodGet, "/api/recipes/download_shopping_cart/", "/api/recipes/download_shopping_cart/",
		"", &actor{id: 1, role: role.RoleUser}, DownloadShoppingCart)
	if rec.Code != http.StatusOK || rec.Body.String() != "Список покупок\n" {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}
