package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alx-polly/polly/config"
	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/items"
	"github.com/alx-polly/polly/logger"
	"github.com/alx-polly/polly/web"
	"github.com/alx-polly/polly/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func initEnv() {
	// A missing .env is fine, the environment alone is enough.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("load .env:", err)
	}
}

func initLogger() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}
}

func runWebServer(demoPort int) {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	initLogger()
	defer logger.CloseLogger()

	defaults, err := config.LoadFileDefaults()
	if err != nil {
		log.Fatal("load config file:", err)
	}
	service.ApplyFileDefaults(defaults)

	err = database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()

	var demo *items.Server
	if demoPort > 0 {
		demo = items.NewServer(demoPort)
		if err := demo.Start(); err != nil {
			log.Fatal("start items demo:", err)
		}
		defer demo.Stop()
	}

	server := web.NewServer()
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("received SIGHUP, restarting server...")
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func resetSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	err = settingService.ResetSettings()
	if err != nil {
		fmt.Println("reset setting failed:", err)
	} else {
		fmt.Println("reset setting success")
	}
}

func showSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	port, err := settingService.GetPort()
	if err != nil {
		fmt.Println("get current port failed:", err)
	}
	pageSize, err := settingService.GetPageSize()
	if err != nil {
		fmt.Println("get current page size failed:", err)
	}
	userService := service.UserService{}
	admin, err := userService.GetFirstAdmin()
	if err != nil {
		fmt.Println("get admin account failed:", err)
		return
	}
	fmt.Println("current settings as follows:")
	fmt.Println("admin email:", admin.Email)
	fmt.Println("port:", port)
	fmt.Println("page size:", pageSize)
}

func updateSetting(port int, email string, password string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}

	if port > 0 {
		err := settingService.SetPort(port)
		if err != nil {
			fmt.Println("set port failed:", err)
		} else {
			fmt.Printf("set port %v success\n", port)
		}
	}
	if email != "" || password != "" {
		userService := service.UserService{}
		err := userService.UpdateFirstAdmin(email, password)
		if err != nil {
			fmt.Println("set admin credentials failed:", err)
		} else {
			fmt.Println("set admin credentials success")
		}
	}
}

func migrateDb() {
	fmt.Println("Start migrating database...")
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Migration done!")
}

func main() {
	initEnv()

	var rootCmd = &cobra.Command{
		Use: "polly",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			demo, _ := cmd.Flags().GetBool("demo")
			demoPort, _ := cmd.Flags().GetInt("demo-port")
			if !demo {
				demoPort = 0
			}
			runWebServer(demoPort)
		},
	}

	runCmd.Flags().Bool("demo", false, "also start the in-memory items API")
	runCmd.Flags().Int("demo-port", 5000, "port for the items API")

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or migrate the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Manage settings",
	}

	var resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings",
		Run: func(cmd *cobra.Command, args []string) {
			resetSetting()
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			port, _ := cmd.Flags().GetInt("port")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			updateSetting(port, email, password)
		},
	}

	updateCmd.Flags().Int("port", 0, "set server port")
	updateCmd.Flags().String("email", "", "set admin email")
	updateCmd.Flags().String("password", "", "set admin password")

	settingCmd.AddCommand(resetCmd, showCmd, updateCmd)
	rootCmd.AddCommand(runCmd, migrateCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
