package http

import (
	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"oxigo-server/internal/config"
	"oxigo-server/internal/incidents"
	applog "oxigo-server/internal/logging"
	"oxigo-server/internal/metrics"
	"oxigo-server/internal/registration"
	"oxigo-server/internal/rewards"
	"oxigo-server/internal/sensors"
	"oxigo-server/internal/tracks"
	"oxigo-server/internal/users"
)

// Deps are the services the HTTP surface fronts.
type Deps struct {
	Users        *users.Service
	Registration *registration.Service
	Incidents    *incidents.Service
	Rewards      *rewards.Service
	Sensors      *sensors.Service
	Tracks       *tracks.Service
	Metrics      *metrics.Metrics
	Log          applog.Logger
}

type Server struct {
	cfg     *config.Config
	log     applog.Logger
	schemas map[string]*gojsonschema.Schema
	metrics *metrics.Metrics

	users        *users.Service
	registration *registration.Service
	incidents    *incidents.Service
	rewards      *rewards.Service
	sensors      *sensors.Service
	tracks       *tracks.Service
}

func NewServer(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors(cfg))
	r.Use(logging(deps.Log))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}
	r.Use(timeout(cfg))

	s := &Server{
		cfg:          cfg,
		log:          deps.Log,
		schemas:      schemas,
		metrics:      deps.Metrics,
		users:        deps.Users,
		registration: deps.Registration,
		incidents:    deps.Incidents,
		rewards:      deps.Rewards,
		sensors:      deps.Sensors,
		tracks:       deps.Tracks,
	}

	reg := r.Group("/v2/register")
	{
		reg.POST("/request", s.registerRequest)
		reg.POST("/verify", s.registerVerify)
	}

	u := r.Group("/v1/users")
	{
		u.GET("", s.listUsers)
		u.POST("/register", s.registerDirect)
		u.POST("/login", s.login)
		u.POST("/logout", s.logout)
		u.GET("/me", s.session(), s.me)
		u.PUT("/update", s.updateUser)
		u.DELETE("/update", s.deleteUser)
	}

	data := r.Group("/v1/data")
	{
		data.POST("/bind", s.bindSensor)
		data.DELETE("/bind", s.unbindSensor)
		data.POST("/user_sensors", s.userSensors)
		data.GET("/admin/sensors", s.allSensors)
		data.POST("/reading", s.addReading)
		data.POST("/today", s.todayReadings)
		data.POST("/map_readings", s.mapReadings)
		data.POST("/summary", s.summary)
	}

	rec := r.Group("/v1/recorridos")
	{
		rec.POST("", s.createTrack)
		rec.DELETE("", s.deleteTrack)
		rec.POST("/puntos", s.addTrackPoint)
		rec.POST("/usuario", s.userTracks)
		rec.POST("/puntos_recorrido", s.trackPoints)
	}

	sys := r.Group("/v1/system/incidents")
	{
		sys.POST("", s.listIncidents)
		sys.POST("/create", s.createIncident)
		sys.POST("/update", s.updateIncident)
	}

	rw := r.Group("/v1/rewards")
	{
		rw.POST("", s.listRewards)
		rw.POST("/claim", s.claimReward)
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	return r, nil
}
