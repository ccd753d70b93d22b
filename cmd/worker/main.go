package main

import (
	"context"
	"log"
	"os"

	"auraapi/dbhelper"
	"auraapi/services"
	"auraapi/tasks"

	"github.com/hibiken/asynq"
)

func runScheduler() {

	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}, &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})

	reapTask, err := tasks.NewReapOrphanImagesTask()
	if err != nil {
		log.Fatalf("Failed to build reap task: %v", err)
	}

	scheduled := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "30 4 * * *", // 4:30 AM daily, after the nightly backup window
			task: reapTask,
			desc: "Orphan image reaper",
		},
	}

	for _, t := range scheduled {
		entryID, err := scheduler.Register(t.cron, t.task)
		if err != nil {
			log.Fatalf("Failed to register task '%s': %v", t.desc, err)
		}
		log.Printf("Registered task '%s' with ID: %s, cron: %s", t.desc, entryID, t.cron)
	}

	log.Println("Starting scheduler...")
	if err := scheduler.Run(); err != nil {
		log.Fatalf("Scheduler failed: %v", err)
	}
}

func main() {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			"maintenance": 3,
			"default":     7,
		}},
	)
	awsService := &services.AWSService{}
	if err := awsService.InitClient(context.Background()); err != nil {
		log.Fatal("[Queue] Failed to initialize AWS provider: S3")
	}
	db := dbhelper.SetupDB()

	reaper := &tasks.ReapOrphanImagesProcessor{DB: db, AWSService: awsService}

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeReapOrphanImages, reaper)

	go runScheduler()
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
