// Package scheduler запускает графы по расписанию.
//
// Расписания задаются конфигурацией при старте сервера: cron-выражение
// плюс граф. Scheduler держит их в памяти и на каждом тике запускает
// те, чьё время пришло.
//
// Структура:
//   - scheduler.go — основная логика Scheduler (Add, Tick)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Launcher: orch,
//	    Logger:   logger,
//	})
//	sched.Add(scheduler.Schedule{Name: "nightly", CronExpr: "0 3 * * *", Graph: g})
//
//	// Вызывается каждый тик (обычно раз в секунду)
//	sched.Tick(ctx)
package scheduler
