package config

type WorkerKeyStruct struct {
	RefreshStatisticsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	RefreshStatisticsQueue: "refresh_statistics_queue",
}
