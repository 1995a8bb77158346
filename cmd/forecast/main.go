// Command forecast asks a running forecast proxy for the weather at a position and prints
// temperature, humidity and summary.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/client"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/config"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/model"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	flags := pflag.NewFlagSet("forecast", pflag.ExitOnError)
	flags.Float64("lat", 0, "latitude in decimal degrees")
	flags.Float64("lon", 0, "longitude in decimal degrees")
	flags.String("proxy", "", "forecast proxy base URL (default from config client.proxy_url)")
	flags.Duration("locate-timeout", 0, "how long to wait for a position (default from config client.locate_timeout)")
	_ = flags.Parse(os.Args[1:])

	_ = viper.BindPFlag("client.proxy_url", flags.Lookup("proxy"))
	_ = viper.BindPFlag("client.locate_timeout", flags.Lookup("locate-timeout"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	c := client.NewForecastClient(config.GetProxyURL(), &http.Client{Timeout: config.GetFetchTimeout()})
	c.LocateTimeout = config.GetLocateTimeout()
	c.Logger = config.GetLogger()

	if err := c.Run(ctx, flagLocator(flags), client.NewTextPage(os.Stdout)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// flagLocator reports the position given on the command line.
func flagLocator(flags *pflag.FlagSet) client.Locator {
	return client.LocatorFunc(func(ctx context.Context) (model.Coordinates, error) {
		if !flags.Changed("lat") || !flags.Changed("lon") {
			return model.Coordinates{}, fmt.Errorf("%w: pass --lat and --lon", client.ErrPositionUnavailable)
		}
		lat, err := flags.GetFloat64("lat")
		if err != nil {
			return model.Coordinates{}, err
		}
		lon, err := flags.GetFloat64("lon")
		if err != nil {
			return model.Coordinates{}, err
		}
		return model.Coordinates{Latitude: lat, Longitude: lon}, nil
	})
}
