package users

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/mock/gomock"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/pagination"
	"github.com/matt-dz/foodgram/internal/api/token"
	"github.com/matt-dz/foodgram/internal/api/views"
	"github.com/matt-dz/foodgram/internal/argon2id"
	"github.com/matt-dz/foodgram/internal/database"
	"github.com/matt-dz/foodgram/internal/env"
	"github.com/matt-dz/foodgram/internal/fileserver"
	"github.com/matt-dz/foodgram/internal/filestore"
)

const strongPassword = "SecureP@ssw0rd123!"

func newTestEnv(t *testing.T) (*env.Env, *database.MockQuerier) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockDB := database.NewMockQuerier(ctrl)

	e := env.New(nil)
	e.Database = &database.Database{Querier: mockDB}
	e.FileStore = filestore.New(fileserver.New(t.TempDir()), filestore.KeyPrefix, "http://foodgram.example")
	return e, mockDB
}

// serve routes a single request through pattern so that path parameters
// resolve. A non-zero userID authenticates the request.
func serve(e *env.Env, method, pattern, target, body string, userID int64, handler http.HandlerFunc) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.MethodFunc(method, pattern, handler)

	r := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := env.WithCtx(r.Context(), e)
	if userID != 0 {
		ctx = token.UserIDWithCtx(ctx, userID)
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

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func TestHandleCreateUser(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*testing.T, *database.MockQuerier)
		wantStatus int
		wantCode   apiError.ErrorCode
	}{
		{
			name: "created",
			body: `{"email":"anna@example.com","username":"anna","first_name":"Anna","last_name":"K","password":"` + strongPassword + `"}`,
			setup: func(t *testing.T, mockDB *database.MockQuerier) {
				mockDB.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p database.CreateUserParams) (database.User, error) {
						if p.Username != "anna" || p.Role != database.RoleUser {
							t.Errorf("unexpected params %+v", p)
						}
						if ok, err := argon2id.Verify(strongPassword, p.PasswordHash); err != nil || !ok {
							t.Errorf("password hash does not verify: %v", err)
						}
						return database.User{ID: 1, Email: p.Email, Username: p.Username, FirstName: p.FirstName, LastName: p.LastName}, nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "weak password",
			body:       `{"email":"anna@example.com","username":"anna","first_name":"Anna","last_name":"K","password":"password"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.WeakPassword,
		},
		{
			name:       "reserved username",
			body:       `{"email":"anna@example.com","username":"me","first_name":"Anna","last_name":"K","password":"` + strongPassword + `"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.ValidationError,
		},
		{
			name:       "invalid username characters",
			body:       `{"email":"anna@example.com","username":"an na","first_name":"Anna","last_name":"K","password":"` + strongPassword + `"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.ValidationError,
		},
		{
			name:       "unknown field",
			body:       `{"email":"anna@example.com","username":"anna","first_name":"Anna","last_name":"K","password":"` + strongPassword + `","role":"admin"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.ValidationError,
		},
		{
			name: "email taken",
			body: `{"email":"anna@example.com","username":"anna","first_name":"Anna","last_name":"K","password":"` + strongPassword + `"}`,
			setup: func(t *testing.T, mockDB *database.MockQuerier) {
				mockDB.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					Return(database.User{}, uniqueViolation(database.ConstraintUserEmail))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.EmailConflict,
		},
		{
			name: "username taken",
			body: `{"email":"anna@example.com","username":"anna","first_name":"Anna","last_name":"K","password":"` + strongPassword + `"}`,
			setup: func(t *testing.T, mockDB *database.MockQuerier) {
				mockDB.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					Return(database.User{}, uniqueViolation(database.ConstraintUserUsername))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.UsernameConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mockDB := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(t, mockDB)
			}

			rec := serve(e, http.MethodPost, "/api/users/", "/api/users/", tt.body, 0, HandleCreateUser)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
				return
			}

			var resp CreateUserResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.ID != 1 || resp.Username != "anna" {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}
}

func TestHandleGetUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		e, mockDB := newTestEnv(t)
		mockDB.EXPECT().GetUserByID(gomock.Any(), int64(2)).
			Return(database.User{ID: 2, Username: "anna"}, nil)
		mockDB.EXPECT().CheckSubscriptions(gomock.Any(), gomock.Any()).Return([]int64{2}, nil)

		rec := serve(e, http.MethodGet, "/api/users/{id}/", "/api/users/2/", "", 1, HandleGetUser)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var user views.User
		if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
			t.Fatal(err)
		}
		if !user.IsSubscribed || user.Avatar != nil {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("missing", func(t *testing.T) {
		e, mockDB := newTestEnv(t)
		mockDB.EXPECT().GetUserByID(gomock.Any(), int64(9)).Return(database.User{}, pgx.ErrNoRows)

		rec := serve(e, http.MethodGet, "/api/users/{id}/", "/api/users/9/", "", 0, HandleGetUser)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestHandleGetMe_Anonymous(t *testing.T) {
	e, _ := newTestEnv(t)
	rec := serve(e, http.MethodGet, "/api/users/me/", "/api/users/me/", "", 0, HandleGetMe)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandleUpdateMe(t *testing.T) {
	current := database.User{ID: 1, Email: "anna@example.com", Username: "anna", FirstName: "Anna", LastName: "K"}

	t.Run("patch merges fields", func(t *testing.T) {
		e, mockDB := newTestEnv(t)
		mockDB.EXPECT().GetUserByID(gomock.Any(), int64(1)).Return(current, nil)
		mockDB.EXPECT().
			UpdateUserProfile(gomock.Any(), database.UpdateUserProfileParams{
				ID:        1,
				Email:     "anna@example.com",
				Username:  "anna",
				FirstName: "Anya",
				LastName:  "K",
			}).
			Return(database.User{ID: 1, Email: "anna@example.com", Username: "anna", FirstName: "Anya", LastName: "K"}, nil)
		mockDB.EXPECT().CheckSubscriptions(gomock.Any(), gomock.Any()).Return(nil, nil)

		rec := serve(e, http.MethodPatch, "/api/users/me/", "/api/users/me/", `{"first_name":"Anya"}`, 1, HandleUpdateMe)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("put requires every field", func(t *testing.T) {
		e, _ := newTestEnv(t)
		rec := serve(e, http.MethodPut, "/api/users/me/", "/api/users/me/", `{"first_name":"Anya"}`, 1, HandleUpdateMe)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("patch rejects empty name", func(t *testing.T) {
		e, _ := newTestEnv(t)
		rec := serve(e, http.MethodPatch, "/api/users/me/", "/api/users/me/", `{"first_name":""}`, 1, HandleUpdateMe)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandleSetAvatar(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	body := `{"avatar":"data:image/png;base64,` + base64.StdEncoding.EncodeToString(png) + `"}`

	t.Run("stored", func(t *testing.T) {
		e, mockDB := newTestEnv(t)
		mockDB.EXPECT().GetUserByID(gomock.Any(), int64(1)).Return(database.User{ID: 1}, nil)
		mockDB.EXPECT().
			UpdateUserAvatar(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p database.UpdateUserAvatarParams) error {
				if !p.AvatarKey.Valid || !strings.HasPrefix(p.AvatarKey.String, "/media/avatars/") {
					t.Errorf("unexpected avatar key %+v", p.AvatarKey)
				}
				return nil
			})

		rec := serve(e, http.MethodPut, "/api/users/me/avatar/", "/api/users/me/avatar/", body, 1, HandleSetAvatar)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		var resp AvatarResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(resp.Avatar, "http://foodgram.example/media/avatars/") {
			t.Errorf("avatar = %q", resp.Avatar)
		}
	})

	t.Run("not an image", func(t *testing.T) {
		e, _ := newTestEnv(t)
		bad := `{"avatar":"data:image/png;base64,` + base64.StdEncoding.EncodeToString([]byte("hello")) + `"}`
		rec := serve(e, http.MethodPut, "/api/users/me/avatar/", "/api/users/me/avatar/", bad, 1, HandleSetAvatar)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if code := errorCode(t, rec); code != apiError.InvalidImage {
			t.Errorf("code = %q", code)
		}
	})
}

func TestHandleDeleteAvatar(t *testing.T) {
	e, mockDB := newTestEnv(t)
	mockDB.EXPECT().GetUserByID(gomock.Any(), int64(1)).
		Return(database.User{ID: 1, AvatarKey: pgtype.Text{String: "/media/avatars/gone.png", Valid: true}}, nil)
	mockDB.EXPECT().UpdateUserAvatar(gomock.Any(), database.UpdateUserAvatarParams{ID: 1}).Return(nil)

	rec := serve(e, http.MethodDelete, "/api/users/me/avatar/", "/api/users/me/avatar/", "", 1, HandleDeleteAvatar)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleSetPassword(t *testing.T) {
	hash, err := argon2id.EncodeHash(strongPassword, argon2id.DefaultParams)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		body       string
		update     bool
		wantStatus int
		wantCode   apiError.ErrorCode
	}{
		{
			name:       "changed",
			body:       `{"current_password":"` + strongPassword + `","new_password":"N3w-Str0ng#Passphrase"}`,
			update:     true,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "wrong current password",
			body:       `{"current_password":"Wr0ng-P@ssword!!","new_password":"N3w-Str0ng#Passphrase"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.InvalidPassword,
		},
		{
			name:       "weak new password",
			body:       `{"current_password":"` + strongPassword + `","new_password":"short"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.WeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mockDB := newTestEnv(t)
			mockDB.EXPECT().GetUserByID(gomock.Any(), int64(1)).Return(database.User{ID: 1, PasswordHash: hash}, nil)
			if tt.update {
				mockDB.EXPECT().UpdateUserPassword(gomock.Any(), gomock.Any()).Return(nil)
			}

			rec := serve(e, http.MethodPost, "/api/users/set_password/", "/api/users/set_password/", tt.body, 1, HandleSetPassword)
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

func TestHandleSubscribe(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(*database.MockQuerier)
		wantStatus int
		wantCode   apiError.ErrorCode
	}{
		{
			name:   "subscribed",
			target: "/api/users/2/subscribe/?recipes_limit=2",
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().UserExists(gomock.Any(), int64(2)).Return(true, nil)
				mockDB.EXPECT().
					CreateSubscription(gomock.Any(), database.CreateSubscriptionParams{UserID: 1, FollowingID: 2}).
					Return(nil)
				mockDB.EXPECT().GetUserByID(gomock.Any(), int64(2)).Return(database.User{ID: 2, Username: "boris"}, nil)
				mockDB.EXPECT().CheckSubscriptions(gomock.Any(), gomock.Any()).Return([]int64{2}, nil)
				mockDB.EXPECT().CountRecipesByAuthors(gomock.Any(), []int64{2}).
					Return([]database.CountRecipesByAuthorsRow{{AuthorID: 2, RecipesCount: 3}}, nil)
				mockDB.EXPECT().
					ListRecipesByAuthor(gomock.Any(), database.ListRecipesByAuthorParams{
						AuthorID: 2,
						Limit:    pgtype.Int4{Int32: 2, Valid: true},
					}).
					Return([]database.Recipe{{ID: 7, AuthorID: 2}, {ID: 6, AuthorID: 2}}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:   "already subscribed",
			target: "/api/users/2/subscribe/",
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().UserExists(gomock.Any(), int64(2)).Return(true, nil)
				mockDB.EXPECT().CreateSubscription(gomock.Any(), gomock.Any()).
					Return(uniqueViolation("subscriptions_user_following_key"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.AlreadySubscribed,
		},
		{
			name:   "self subscription",
			target: "/api/users/1/subscribe/",
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().UserExists(gomock.Any(), int64(1)).Return(true, nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiError.SelfSubscription,
		},
		{
			name:   "missing author",
			target: "/api/users/9/subscribe/",
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().UserExists(gomock.Any(), int64(9)).Return(false, nil)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   apiError.UserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mockDB := newTestEnv(t)
			tt.setup(mockDB)

			rec := serve(e, http.MethodPost, "/api/users/{id}/subscribe/", tt.target, "", 1, HandleSubscribe)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
				return
			}

			var sub views.Subscription
			if err := json.NewDecoder(rec.Body).Decode(&sub); err != nil {
				t.Fatal(err)
			}
			if !sub.IsSubscribed || sub.RecipesCount != 3 || len(sub.Recipes) != 2 {
				t.Errorf("unexpected subscription %+v", sub)
			}
		})
	}
}

func TestHandleUnsubscribe(t *testing.T) {
	tests := []struct {
		name       string
		deleted    int64
		wantStatus int
	}{
		{name: "removed", deleted: 1, wantStatus: http.StatusNoContent},
		{name: "not subscribed", deleted: 0, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mockDB := newTestEnv(t)
			mockDB.EXPECT().UserExists(gomock.Any(), int64(2)).Return(true, nil)
			mockDB.EXPECT().
				DeleteSubscription(gomock.Any(), database.DeleteSubscriptionParams{UserID: 1, FollowingID: 2}).
				Return(tt.deleted, nil)

			rec := serve(e, http.MethodDelete, "/api/users/{id}/subscribe/", "/api/users/2/subscribe/", "", 1, HandleUnsubscribe)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleListSubscriptions_Empty(t *testing.T) {
	e, mockDB := newTestEnv(t)
	mockDB.EXPECT().CountSubscriptions(gomock.Any(), int64(1)).Return(int64(0), nil)
	mockDB.EXPECT().
		ListSubscriptions(gomock.Any(), database.ListSubscriptionsParams{UserID: 1, Limit: 6, Offset: 0}).
		Return(nil, nil)

	rec := serve(e, http.MethodGet, "/api/users/subscriptions/", "/api/users/subscriptions/", "", 1, HandleListSubscriptions)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var page pagination.Page[views.Subscription]
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Count != 0 || page.Results == nil || len(page.Results) != 0 || page.Next != nil {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestHandleListSubscriptions(t *testing.T) {
	zoe := database.User{ID: 5, Username: "zoe", Email: "zoe@example.com"}
	boris := database.User{ID: 2, Username: "boris", Email: "boris@example.com"}
	vera := database.User{ID: 8, Username: "vera", Email: "vera@example.com"}

	tests := []struct {
		name         string
		target       string
		setup        func(*database.MockQuerier)
		wantStatus   int
		wantIDs      []int64
		wantRecipes  []int
		wantCounts   []int64
		wantNext     string
		wantPrevious string
	}{
		{
			name:   "subscription order with recipes_limit",
			target: "/api/users/subscriptions/?limit=2&recipes_limit=1",
			setup: func(mockDB *database.MockQuerier) {
				limit := pgtype.Int4{Int32: 1, Valid: true}
				mockDB.EXPECT().CountSubscriptions(gomock.Any(), int64(1)).Return(int64(3), nil)
				mockDB.EXPECT().
					ListSubscriptions(gomock.Any(), database.ListSubscriptionsParams{UserID: 1, Limit: 2, Offset: 0}).
					Return([]database.User{zoe, boris}, nil)
				mockDB.EXPECT().
					CheckSubscriptions(gomock.Any(), database.CheckSubscriptionsParams{UserID: 1, FollowingIds: []int64{5, 2}}).
					Return([]int64{5, 2}, nil)
				mockDB.EXPECT().CountRecipesByAuthors(gomock.Any(), []int64{5, 2}).
					Return([]database.CountRecipesByAuthorsRow{
						{AuthorID: 2, RecipesCount: 3},
						{AuthorID: 5, RecipesCount: 4},
					}, nil)
				mockDB.EXPECT().
					ListRecipesByAuthor(gomock.Any(), database.ListRecipesByAuthorParams{AuthorID: 5, Limit: limit}).
					Return([]database.Recipe{{ID: 12, AuthorID: 5}}, nil)
				mockDB.EXPECT().
					ListRecipesByAuthor(gomock.Any(), database.ListRecipesByAuthorParams{AuthorID: 2, Limit: limit}).
					Return([]database.Recipe{{ID: 7, AuthorID: 2}}, nil)
			},
			wantStatus:  http.StatusOK,
			wantIDs:     []int64{5, 2},
			wantRecipes: []int{1, 1},
			wantCounts:  []int64{4, 3},
			wantNext:    "http://example.com/api/users/subscriptions/?limit=2&page=2&recipes_limit=1",
		},
		{
			name:   "last page without recipes_limit",
			target: "/api/users/subscriptions/?page=2&limit=2",
			setup: func(mockDB *database.MockQuerier) {
				mockDB.EXPECT().CountSubscriptions(gomock.Any(), int64(1)).Return(int64(3), nil)
				mockDB.EXPECT().
					ListSubscriptions(gomock.Any(), database.ListSubscriptionsParams{UserID: 1, Limit: 2, Offset: 2}).
					Return([]database.User{vera}, nil)
				mockDB.EXPECT().CheckSubscriptions(gomock.Any(), gomock.Any()).Return([]int64{8}, nil)
				mockDB.EXPECT().CountRecipesByAuthors(gomock.Any(), []int64{8}).Return(nil, nil)
				mockDB.EXPECT().
					ListRecipesByAuthor(gomock.Any(), database.ListRecipesByAuthorParams{AuthorID: 8}).
					Return(nil, nil)
			},
			wantStatus:   http.StatusOK,
			wantIDs:      []int64{8},
			wantRecipes:  []int{0},
			wantCounts:   []int64{0},
			wantPrevious: "http://example.com/api/users/subscriptions/?limit=2",
		},
		{
			name:       "offset out of range",
			target:     "/api/users/subscriptions/?page=30000000&limit=100",
			setup:      func(*database.MockQuerier) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative recipes_limit",
			target:     "/api/users/subscriptions/?recipes_limit=-1",
			setup:      func(*database.MockQuerier) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mockDB := newTestEnv(t)
			tt.setup(mockDB)

			rec := serve(e, http.MethodGet, "/api/users/subscriptions/", tt.target, "", 1, HandleListSubscriptions)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if code := errorCode(t, rec); code != apiError.ValidationError {
					t.Errorf("code = %q, want %q", code, apiError.ValidationError)
				}
				return
			}

			var page pagination.Page[views.Subscription]
			if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
				t.Fatal(err)
			}
			if page.Count != 3 {
				t.Errorf("count = %d, want 3", page.Count)
			}
			if len(page.Results) != len(tt.wantIDs) {
				t.Fatalf("got %d results, want %d", len(page.Results), len(tt.wantIDs))
			}
			for i, sub := range page.Results {
				if sub.ID != tt.wantIDs[i] {
					t.Errorf("results[%d].id = %d, want %d", i, sub.ID, tt.wantIDs[i])
				}
				if !sub.IsSubscribed {
					t.Errorf("results[%d] is not marked subscribed", i)
				}
				if sub.Recipes == nil || len(sub.Recipes) != tt.wantRecipes[i] {
					t.Errorf("results[%d] has %d recipes, want %d", i, len(sub.Recipes), tt.wantRecipes[i])
				}
				if sub.RecipesCount != tt.wantCounts[i] {
					t.Errorf("results[%d].recipes_count = %d, want %d", i, sub.RecipesCount, tt.wantCounts[i])
				}
			}
			if got := deref(page.Next); got != tt.wantNext {
				t.Errorf("next = %q, want %q", got, tt.wantNext)
			}
			if got := deref(page.Previous); got != tt.wantPrevious {
				t.Errorf("previous = %q, want %q", got, tt.wantPrevious)
			}
		})
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func TestHandleListUsers(t *testing.T) {
	e, mockDB := newTestEnv(t)
	mockDB.EXPECT().CountUsers(gomock.Any()).Return(int64(3), nil)
	mockDB.EXPECT().
		ListUsers(gomock.Any(), database.ListUsersParams{Limit: 2, Offset: 2}).
		Return([]database.User{{ID: 3, Username: "c"}}, nil)

	rec := serve(e, http.MethodGet, "/api/users/", "/api/users/?page=2&limit=2", "", 0, HandleListUsers)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var page pagination.Page[views.User]
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Count != 3 || len(page.Results) != 1 || page.Next != nil || page.Previous == nil {
		t.Errorf("unexpected page %+v", page)
	}
}
