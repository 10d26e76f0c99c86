package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aulaplay/aulaplay-backend/internal/config"
	"github.com/aulaplay/aulaplay-backend/internal/database"
	"github.com/aulaplay/aulaplay-backend/internal/logger"
	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/aulaplay/aulaplay-backend/internal/repository"
	"github.com/aulaplay/aulaplay-backend/internal/service"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the demo content: three subjects, one teacher, a handful of students
// and three published activities. Safe to run against an empty database; the
// server prewarms the Redis payload caches on its next start.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	subjectRepo := repository.NewSubjectRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	studentService := service.NewStudentService(studentRepo)

	fmt.Println("=== Seeding AulaPlay Demo Content ===")

	// ─── Subjects ──────────────────────────────────────────────────────
	subjects := map[string]*model.Subject{}
	for _, name := range []string{"Ciencias Naturales", "Español", "Inglés"} {
		sub := &model.Subject{}
		err := pool.QueryRow(ctx, "SELECT id, name FROM subjects WHERE name = $1", name).Scan(&sub.ID, &sub.Name)
		if err != nil {
			if err != pgx.ErrNoRows {
				log.Fatal().Err(err).Msg("Failed to check existing subject")
			}
			sub.Name = name
			if err := subjectRepo.Create(ctx, sub); err != nil {
				log.Fatal().Err(err).Str("subject", name).Msg("Failed to create subject")
			}
			fmt.Printf("Created subject: %s\n", name)
		} else {
			fmt.Printf("Found existing subject: %s\n", name)
		}
		subjects[name] = sub
	}

	// ─── Teacher ───────────────────────────────────────────────────────
	teacher, err := staffRepo.GetByEmail(ctx, "profesora@aulaplay.edu")
	if err != nil {
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte("aulaplay123"), cfg.BcryptCost)
		if hashErr != nil {
			log.Fatal().Err(hashErr).Msg("Failed to hash password")
		}
		teacher = &model.Staff{
			Name:         "Profesora Ana",
			Email:        "profesora@aulaplay.edu",
			Role:         model.StaffRoleTeacher,
			PasswordHash: string(hashed),
		}
		if err := staffRepo.Create(ctx, teacher); err != nil {
			log.Fatal().Err(err).Msg("Failed to create teacher")
		}
		fmt.Printf("Created teacher: %s (ID %d)\n", teacher.Email, teacher.ID)
	} else {
		fmt.Printf("Found existing teacher: %s (ID %d)\n", teacher.Email, teacher.ID)
	}

	// ─── Students ──────────────────────────────────────────────────────
	studentNames := []string{
		"Lucía Fernández", "Mateo García", "Sofía Martínez", "Diego López",
		"Valentina Ruiz", "Santiago Torres", "Camila Romero", "Nicolás Díaz",
	}
	created := 0
	for i, name := range studentNames {
		student := &model.Student{
			Code:         fmt.Sprintf("alumno%02d", i+1),
			Name:         name,
			GradeLabel:   "3A",
			PasswordHash: "aulaplay",
		}
		if err := studentService.Create(ctx, student); err != nil {
			fmt.Printf("Skipping student %s (%s): %v\n", student.Name, student.Code, err)
			continue
		}
		created++
	}
	fmt.Printf("Created %d/%d students\n", created, len(studentNames))

	// ─── Activities ────────────────────────────────────────────────────
	activities := []struct {
		activity  model.Activity
		subject   string
		questions []model.Question
	}{
		{
			activity: model.Activity{
				Title:            "🐾 Aventura en el Reino Animal",
				Description:      "¡Descubre el fascinante mundo de los animales! Actividad interactiva con diferentes tipos de preguntas sobre nuestros amigos animales.",
				Difficulty:       "Fácil",
				TimeLimitSeconds: 480,
			},
			subject: "Ciencias Naturales",
			questions: []model.Question{
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🐱 ¿Qué sonido hace el gato?",
					Visual:        "🐱",
					Explanation:   "¡Correcto! Los gatos hacen \"miau miau\" 🐱",
					Options:       []string{"Guau guau", "Miau miau", "Muuu muuu", "Oink oink"},
					CorrectOption: "Miau miau",
				},
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🦁 ¿Cuál de estos animales es el rey de la selva?",
					Visual:        "🦁👑",
					Explanation:   "¡Excelente! El león es conocido como el rey de la selva 🦁",
					Options:       []string{"🐘 Elefante", "🦁 León", "🐯 Tigre", "🦒 Jirafa"},
					CorrectOption: "🦁 León",
				},
				{
					Kind:            model.QuestionKindShortAnswer,
					Prompt:          "Escribe el nombre de un animal que vuela",
					Visual:          "🐦✈️",
					Explanation:     "¡Perfecto! Los pájaros vuelan por el cielo 🐦",
					CorrectAnswer:   "pájaro",
					AcceptedAnswers: []string{"pájaro", "pajaro", "ave", "águila", "aguila", "paloma", "loro", "canario"},
				},
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🐄 ¿Qué nos da la vaca?",
					Visual:        "🐄➡️🥛",
					Explanation:   "¡Correcto! Las vacas nos dan leche fresca 🐄🥛",
					Options:       []string{"🥛 Leche", "🥚 Huevos", "🍯 Miel", "🧀 Solo queso"},
					CorrectOption: "🥛 Leche",
				},
				{
					Kind:        model.QuestionKindMatchPairs,
					Prompt:      "Une cada animal con su hogar",
					Visual:      "🏠🐾",
					Explanation: "¡Fantástico! Cada animal tiene su hogar especial 🏠",
					LeftItems:   []string{"🐝 Abeja", "🐻 Oso", "🐧 Pingüino", "🦅 Águila"},
					RightItems:  []string{"🏔️ Montaña", "🧊 Polo Sur", "🌳 Cueva", "🍯 Colmena"},
					// Abeja->Colmena, Oso->Cueva, Pingüino->Polo Sur, Águila->Montaña
					CorrectMapping: []int{3, 2, 1, 0},
				},
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🐠 ¿Dónde viven los peces?",
					Visual:        "🐠🌊",
					Explanation:   "¡Correcto! Los peces viven en el agua del mar, ríos y lagos 🐠🌊",
					Options:       []string{"🌳 En los árboles", "🌊 En el agua", "🏔️ En las montañas", "🏠 En las casas"},
					CorrectOption: "🌊 En el agua",
				},
				{
					Kind:            model.QuestionKindShortAnswer,
					Prompt:          "Escribe el nombre de un animal muy grande",
					Visual:          "🐘📏",
					Explanation:     "¡Increíble! El elefante es uno de los animales más grandes 🐘",
					CorrectAnswer:   "elefante",
					AcceptedAnswers: []string{"elefante", "ballena", "jirafa", "hipopótamo", "hipopotamo", "rinoceronte"},
				},
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🐸 ¿Cómo se mueve la rana?",
					Visual:        "🐸💨",
					Explanation:   "¡Perfecto! Las ranas se mueven saltando con sus patas traseras 🐸🦘",
					Options:       []string{"🏃 Corriendo", "🦘 Saltando", "🏊 Nadando solamente", "🕷️ Arrastrándose"},
					CorrectOption: "🦘 Saltando",
				},
			},
		},
		{
			activity: model.Activity{
				Title:            "📚 Aventura del Patito Feo",
				Description:      "Vive la historia del Patito Feo de manera interactiva. Responde preguntas y descubre el final.",
				Difficulty:       "Medio",
				TimeLimitSeconds: 240,
			},
			subject: "Español",
			questions: []model.Question{
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🐣 Al principio de la historia, ¿cómo se sentía el patito?",
					Visual:        "🐣💭😢",
					Explanation:   "Correcto! El patito se sentía triste porque era diferente a los demás.",
					Options:       []string{"😊 Feliz", "😢 Triste", "😠 Enojado", "😨 Asustado"},
					CorrectOption: "😢 Triste",
				},
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🦢 ¿En qué hermoso animal se convirtió el patito al final?",
					Visual:        "🐣➡️🦢✨",
					Explanation:   "¡Exacto! El patito se convirtió en un hermoso cisne blanco.",
					Options:       []string{"🦆 Pato", "🦢 Cisne", "🪿 Ganso", "🐓 Pollo"},
					CorrectOption: "🦢 Cisne",
				},
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "💭 ¿Cuál es la moraleja principal del cuento?",
					Visual:        "🌟👥💖",
					Explanation:   "¡Perfecto! La historia nos enseña que todos somos especiales y únicos.",
					Options:       []string{"Ser diferente es malo", "Todos somos especiales", "Los cisnes son mejores", "No importa la apariencia"},
					CorrectOption: "Todos somos especiales",
				},
			},
		},
		{
			activity: model.Activity{
				Title:            "🌈 Quiz Colorido de Inglés",
				Description:      "Aprende los colores en inglés de forma divertida con efectos visuales y sonidos.",
				Difficulty:       "Fácil",
				TimeLimitSeconds: 180,
			},
			subject: "Inglés",
			questions: []model.Question{
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🔴 ¿Cómo se dice \"rojo\" en inglés?",
					Visual:        "🔴",
					Explanation:   "¡Correcto! Red significa rojo 🔴",
					Options:       []string{"Blue", "Red", "Green", "Yellow"},
					CorrectOption: "Red",
				},
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🔵 ¿Cómo se dice \"azul\" en inglés?",
					Visual:        "🔵",
					Explanation:   "¡Excelente! Blue significa azul 🔵",
					Options:       []string{"Blue", "Red", "Green", "Yellow"},
					CorrectOption: "Blue",
				},
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🟢 ¿Cómo se dice \"verde\" en inglés?",
					Visual:        "🟢",
					Explanation:   "¡Fantástico! Green significa verde 🟢",
					Options:       []string{"Blue", "Red", "Green", "Yellow"},
					CorrectOption: "Green",
				},
				{
					Kind:          model.QuestionKindMultipleChoice,
					Prompt:        "🟡 ¿Cómo se dice \"amarillo\" en inglés?",
					Visual:        "🟡",
					Explanation:   "¡Increíble! Yellow significa amarillo 🟡",
					Options:       []string{"Blue", "Red", "Green", "Yellow"},
					CorrectOption: "Yellow",
				},
			},
		},
	}

	for _, seed := range activities {
		var exists bool
		if err := pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM activities WHERE title = $1)", seed.activity.Title).Scan(&exists); err != nil {
			log.Fatal().Err(err).Msg("Failed to check existing activity")
		}
		if exists {
			fmt.Printf("Found existing activity: %s\n", seed.activity.Title)
			continue
		}

		activity := seed.activity
		activity.SubjectID = subjects[seed.subject].ID
		activity.AuthorID = teacher.ID
		activity.Status = model.ActivityStatusDraft

		if err := activityRepo.Create(ctx, &activity); err != nil {
			log.Fatal().Err(err).Str("activity", activity.Title).Msg("Failed to create activity")
		}

		for i := range seed.questions {
			seed.questions[i].ActivityID = activity.ID
			seed.questions[i].OrderNum = i
			seed.questions[i].Normalize()
			if err := seed.questions[i].Validate(); err != nil {
				log.Fatal().Err(err).Str("activity", activity.Title).Msg("Seed question is invalid")
			}
		}
		if err := activityRepo.ReplaceQuestions(ctx, activity.ID, seed.questions); err != nil {
			log.Fatal().Err(err).Str("activity", activity.Title).Msg("Failed to insert questions")
		}

		// Go straight to PUBLISHED; the server warms Redis on startup.
		if err := activityRepo.UpdateStatus(ctx, activity.ID, model.ActivityStatusPublished); err != nil {
			log.Fatal().Err(err).Str("activity", activity.Title).Msg("Failed to publish activity")
		}

		fmt.Printf("Created and published activity: %s (%d questions)\n", activity.Title, len(seed.questions))
	}

	fmt.Println("\nSeed completed!")
}
