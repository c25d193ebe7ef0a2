package service

import "alcyxob/fitsho/internal/domain"

// defaultCatalog is inserted into an empty exercises collection on startup.
var defaultCatalog = []domain.Exercise{
	{Name: "Bench Press", MuscleGroup: "chest", Equipment: "barbell"},
	{Name: "Incline Bench Press", MuscleGroup: "chest", Equipment: "barbell"},
	{Name: "Dumbbell Fly", MuscleGroup: "chest", Equipment: "dumbbell"},
	{Name: "Push Up", MuscleGroup: "chest", Equipment: "bodyweight"},
	{Name: "Cable Crossover", MuscleGroup: "chest", Equipment: "cable"},
	{Name: "Incline Dumbbell Press", MuscleGroup: "chest", Equipment: "dumbbell"},
	{Name: "Chest Dip", MuscleGroup: "chest", Equipment: "bodyweight"},

	{Name: "Deadlift", MuscleGroup: "back", Equipment: "barbell"},
	{Name: "Barbell Row", MuscleGroup: "back", Equipment: "barbell"},
	{Name: "Pull Up", MuscleGroup: "back", Equipment: "bodyweight"},
	{Name: "Lat Pulldown", MuscleGroup: "back", Equipment: "cable"},
	{Name: "Seated Row", MuscleGroup: "back", Equipment: "cable"},
	{Name: "Dumbbell Row", MuscleGroup: "back", Equipment: "dumbbell"},
	{Name: "T-Bar Row", MuscleGroup: "back", Equipment: "barbell"},

	{Name: "Overhead Press", MuscleGroup: "shoulders", Equipment: "barbell"},
	{Name: "Lateral Raise", MuscleGroup: "shoulders", Equipment: "dumbbell"},
	{Name: "Face Pull", MuscleGroup: "shoulders", Equipment: "cable"},
	{Name: "Arnold Press", MuscleGroup: "shoulders", Equipment: "dumbbell"},
	{Name: "Front Raise", MuscleGroup: "shoulders", Equipment: "dumbbell"},
	{Name: "Reverse Fly", MuscleGroup: "shoulders", Equipment: "dumbbell"},

	{Name: "Barbell Curl", MuscleGroup: "biceps", Equipment: "barbell"},
	{Name: "Dumbbell Curl", MuscleGroup: "biceps", Equipment: "dumbbell"},
	{Name: "Hammer Curl", MuscleGroup: "biceps", Equipment: "dumbbell"},
	{Name: "Preacher Curl", MuscleGroup: "biceps", Equipment: "machine"},
	{Name: "Incline Curl", MuscleGroup: "biceps", Equipment: "dumbbell"},
	{Name: "Cable Curl", MuscleGroup: "biceps", Equipment: "cable"},

	{Name: "Tricep Pushdown", MuscleGroup: "triceps", Equipment: "cable"},
	{Name: "Skull Crusher", MuscleGroup: "triceps", Equipment: "barbell"},
	{Name: "Tricep Dip", MuscleGroup: "triceps", Equipment: "bodyweight"},
	{Name: "Overhead Tricep Extension", MuscleGroup: "triceps", Equipment: "dumbbell"},
	{Name: "Close Grip Bench Press", MuscleGroup: "triceps", Equipment: "barbell"},
	{Name: "Tricep Kickback", MuscleGroup: "triceps", Equipment: "dumbbell"},

	{Name: "Squat", MuscleGroup: "legs", Equipment: "barbell"},
	{Name: "Leg Press", MuscleGroup: "legs", Equipment: "machine"},
	{Name: "Romanian Deadlift", MuscleGroup: "legs", Equipment: "barbell"},
	{Name: "Leg Curl", MuscleGroup: "legs", Equipment: "machine"},
	{Name: "Leg Extension", MuscleGroup: "legs", Equipment: "machine"},
	{Name: "Lunges", MuscleGroup: "legs", Equipment: "bodyweight"},
	{Name: "Bulgarian Split Squat", MuscleGroup: "legs", Equipment: "dumbbell"},
	{Name: "Hack Squat", MuscleGroup: "legs", Equipment: "machine"},

	{Name: "Hip Thrust", MuscleGroup: "glutes", Equipment: "barbell"},
	{Name: "Glute Bridge", MuscleGroup: "glutes", Equipment: "bodyweight"},
	{Name: "Cable Kickback", MuscleGroup: "glutes", Equipment: "cable"},

	{Name: "Plank", MuscleGroup: "core", Equipment: "bodyweight"},
	{Name: "Crunch", MuscleGroup: "core", Equipment: "bodyweight"},
	{Name: "Hanging Leg Raise", MuscleGroup: "core", Equipment: "bodyweight"},
	{Name: "Cable Woodchop", MuscleGroup: "core", Equipment: "cable"},
	{Name: "Russian Twist", MuscleGroup: "core", Equipment: "bodyweight"},
	{Name: "Ab Wheel Rollout", MuscleGroup: "core", Equipment: "bodyweight"},

	{Name: "Standing Calf Raise", MuscleGroup: "calves", Equipment: "machine"},
	{Name: "Seated Calf Raise", MuscleGroup: "calves", Equipment: "machine"},

	{Name: "Wrist Curl", MuscleGroup: "forearms", Equipment: "dumbbell"},
	{Name: "Reverse Wrist Curl", MuscleGroup: "forearms", Equipment: "dumbbell"},
	{Name: "Farmer's Walk", MuscleGroup: "forearms", Equipment: "dumbbell"},
}

// DefaultCatalog returns a copy of the built-in exercise catalog.
func DefaultCatalog() []domain.Exercise {
	out := make([]domain.Exercise, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}
