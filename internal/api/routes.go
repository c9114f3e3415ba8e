package api

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.DeviceInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	s.router.GET("/ws/:topic", s.wsHandler.Serve)

	v1 := s.router.Group("/api/v1")

	system := v1.Group("/system")
	{
		system.GET("/status", s.systemHandler.GetStatus)
	}

	camera := v1.Group("/camera")
	{
		camera.GET("/status", s.cameraHandler.GetStatus)
		camera.GET("/stream", s.cameraHandler.Stream)
		camera.GET("/snapshot", s.cameraHandler.Snapshot)
		camera.POST("/record/start", s.cameraHandler.StartRecording)
		camera.POST("/record/stop", s.cameraHandler.StopRecording)
	}

	recordings := v1.Group("/recordings")
	{
		recordings.GET("", s.recordingsHandler.ListFiles)
		recordings.GET("/sessions", s.recordingsHandler.ListSessions)
		recordings.GET("/:name/download", s.recordingsHandler.Download)
		recordings.DELETE("/:name", s.recordingsHandler.Delete)
	}

	hardware := v1.Group("/hardware/gpio")
	{
		hardware.GET("/pins", s.gpioHandler.ListPins)
		hardware.GET("/pins/:pin", s.gpioHandler.GetPin)
		hardware.POST("/configure", s.gpioHandler.ConfigurePin)
		hardware.POST("/state", s.gpioHandler.SetState)
		hardware.POST("/pwm/setup", s.gpioHandler.SetupPWM)
		hardware.POST("/pwm/start", s.gpioHandler.StartPWM)
		hardware.POST("/pwm/duty", s.gpioHandler.SetPWMDutyCycle)
		hardware.POST("/pwm/frequency", s.gpioHandler.SetPWMFrequency)
		hardware.POST("/pwm/stop", s.gpioHandler.StopPWM)
		hardware.POST("/cleanup", s.gpioHandler.Cleanup)
	}

	cfg := v1.Group("/config")
	{
		cfg.GET("/settings", s.configHandler.GetMotionSettings)
		cfg.POST("/settings", s.configHandler.UpdateMotionSettings)
		cfg.GET("/storage", s.configHandler.GetStorageSettings)
		cfg.POST("/storage", s.configHandler.UpdateStorageSettings)
		cfg.GET("/profiles", s.configHandler.ListProfiles)
		cfg.POST("/profiles", s.configHandler.SaveProfile)
		cfg.GET("/profiles/:name", s.configHandler.GetProfile)
		cfg.DELETE("/profiles/:name", s.configHandler.DeleteProfile)
		cfg.POST("/profiles/:name/apply", s.configHandler.ApplyProfile)
	}

	maintenance := v1.Group("/maintenance")
	{
		maintenance.GET("/storage/status", s.maintenanceHandler.StorageStatus)
		maintenance.POST("/storage/cleanup", s.maintenanceHandler.Cleanup)
	}
}
