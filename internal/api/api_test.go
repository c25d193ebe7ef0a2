package api

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/draft"
	"alcyxob/fitsho/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// stubExercises serves GetExercise from a map; the other methods are unused here.
type stubExercises struct {
	service.ExerciseService
	byID map[primitive.ObjectID]domain.Exercise
}

func (s *stubExercises) GetExercise(_ context.Context, _, id primitive.ObjectID) (*service.ExerciseView, error) {
	e, ok := s.byID[id]
	if !ok {
		return nil, service.ErrExerciseNotFound
	}
	return &service.ExerciseView{Exercise: e}, nil
}

// stubWorkouts records completed workouts and can be made to fail.
type stubWorkouts struct {
	service.WorkoutService
	saved []*domain.Workout
	err   error
}

func (s *stubWorkouts) SaveCompletedWorkout(_ context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	if s.err != nil {
		return primitive.NilObjectID, s.err
	}
	s.saved = append(s.saved, w)
	return primitive.NewObjectID(), nil
}

// stubProfile keeps one weight unit per user.
type stubProfile struct {
	service.ProfileService
	units map[primitive.ObjectID]domain.WeightUnit
}

func (s *stubProfile) UpdateWeightUnit(_ context.Context, userID primitive.ObjectID, unit domain.WeightUnit) (*domain.Preferences, error) {
	s.units[userID] = unit
	return &domain.Preferences{UserID: userID, WeightUnit: unit}, nil
}

// stubSupplements flips taken flags for the supplement ids it knows.
type stubSupplements struct {
	service.SupplementService
	known map[primitive.ObjectID]bool
	taken map[string]bool
}

func (s *stubSupplements) Toggle(_ context.Context, _, supplementID primitive.ObjectID, date string) (bool, error) {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return false, service.ErrInvalidDate
	}
	if !s.known[supplementID] {
		return false, service.ErrSupplementNotFound
	}
	key := supplementID.Hex() + "/" + date
	s.taken[key] = !s.taken[key]
	return s.taken[key], nil
}

type testServer struct {
	router    *gin.Engine
	exercises *stubExercises
	workouts  *stubWorkouts
	profile   *stubProfile
	supps     *stubSupplements
	userID    primitive.ObjectID
	token     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	exercises := &stubExercises{byID: map[primitive.ObjectID]domain.Exercise{}}
	workouts := &stubWorkouts{}
	profile := &stubProfile{units: map[primitive.ObjectID]domain.WeightUnit{}}
	supps := &stubSupplements{known: map[primitive.ObjectID]bool{}, taken: map[string]bool{}}
	manager := draft.NewManager(draft.NewMemoryStore(time.Hour), workouts)

	router := gin.New()
	SetupRoutes(router, testSecret, false, Services{
		Exercise:   exercises,
		Workout:    workouts,
		Profile:    profile,
		Supplement: supps,
		Drafts:     manager,
	})

	userID := primitive.NewObjectID()
	return &testServer{
		router:    router,
		exercises: exercises,
		workouts:  workouts,
		profile:   profile,
		supps:     supps,
		userID:    userID,
		token:     signToken(t, userID.Hex(), time.Now().Add(time.Hour)),
	}
}

func signToken(t *testing.T, uid string, expires time.Time) string {
	t.Helper()
	return signTokenFrom(t, service.TokenIssuer, uid, expires)
}

func signTokenFrom(t *testing.T, issuer, uid string, expires time.Time) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) addCatalogExercise(name, muscle string) primitive.ObjectID {
	id := primitive.NewObjectID()
	s.exercises.byID[id] = domain.Exercise{ID: id, Name: name, MuscleGroup: muscle, Equipment: "barbell"}
	return id
}

// do sends a request as the test user within the given session.
func (s *testServer) do(t *testing.T, method, path, session string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
