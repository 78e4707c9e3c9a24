package main

import (
	"context"
	"fmt"
	"time"

	"github.com/eksamina/eksaminator-backend/internal/config"
	"github.com/eksamina/eksaminator-backend/internal/database"
	"github.com/eksamina/eksaminator-backend/internal/logger"
	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/eksamina/eksaminator-backend/internal/repository"
	"github.com/eksamina/eksaminator-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

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

	examRepo := repository.NewExamRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	examinerRepo := repository.NewExaminerRepository(pool)
	studentService := service.NewStudentService(studentRepo, examRepo)

	fmt.Println("=== Seeding Demo Data ===")

	// Demo examiner (password "eksamen123").
	hash, err := bcrypt.GenerateFromPassword([]byte("eksamen123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}
	examiner := &model.Examiner{
		Name:         "Demo Censor",
		Email:        "censor@example.dk",
		PasswordHash: string(hash),
	}
	if err := examinerRepo.Create(ctx, examiner); err != nil {
		log.Fatal().Err(err).Msg("Failed to create examiner (already seeded?)")
	}
	fmt.Printf("Created examiner %s (%s)\n", examiner.Name, examiner.Email)

	exam := &model.Exam{
		ExamTerm:           "Sommer 2026",
		CourseName:         "Softwarearkitektur",
		ExamDate:           time.Now().AddDate(0, 0, 1),
		NumberOfQuestions:  12,
		ExaminationMinutes: 20,
		StartTime:          "09:00",
	}
	if err := examRepo.Create(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to create exam")
	}
	fmt.Printf("Created exam %s / %s (ID: %s)\n", exam.CourseName, exam.ExamTerm, exam.ID)

	names := []string{
		"Mikkel Jensen", "Sofie Nielsen", "Emil Hansen", "Freja Pedersen",
		"Oliver Andersen", "Ida Christensen", "Noah Larsen", "Clara Sorensen",
		"William Rasmussen", "Anna Jorgensen", "Lucas Petersen", "Laura Madsen",
	}

	for i, name := range names {
		student, err := studentService.Enroll(ctx, exam.ID, &model.EnrollStudentRequest{
			StudentNo: fmt.Sprintf("S-2026-%03d", i+1),
			Name:      name,
		})
		if err != nil {
			log.Fatal().Err(err).Str("name", name).Msg("Failed to enroll student")
		}
		fmt.Printf("  enrolled #%d %s (%s)\n", student.ExamOrder, student.Name, student.StudentNo)
	}

	fmt.Printf("\nDone. %d students enrolled.\n", len(names))
}
