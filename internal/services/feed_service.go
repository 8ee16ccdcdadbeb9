package services

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/repositories"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

const gtfsRealtimeVersion = "2.0"

// FeedService publishes the latest position of every bus as a GTFS-Realtime
// VehiclePositions feed. It is pull-only.
type FeedService struct {
	DB  *sql.DB
	Now func() time.Time
}

func (s FeedService) VehiclePositions(ctx context.Context) (*gtfsrtpb.FeedMessage, error) {
	positions, err := repositories.LocationRepository{DB: dbOrDefault(s.DB)}.LatestPerBus(ctx)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}

	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String(gtfsRealtimeVersion),
			Incrementality:      gtfsrtpb.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(nowOrDefault(s.Now).Unix())),
		},
	}
	for _, p := range positions {
		lat, _ := p.Latitude.Float64()
		lon, _ := p.Longitude.Float64()
		busID := strconv.FormatInt(p.BusID, 10)
		fm.Entity = append(fm.Entity, &gtfsrtpb.FeedEntity{
			Id: proto.String("bus-" + busID),
			Vehicle: &gtfsrtpb.VehiclePosition{
				Vehicle: &gtfsrtpb.VehicleDescriptor{
					Id:    proto.String(busID),
					Label: proto.String(p.BusNumber),
				},
				Position: &gtfsrtpb.Position{
					Latitude:  proto.Float32(float32(lat)),
					Longitude: proto.Float32(float32(lon)),
					Bearing:   proto.Float32(float32(p.Heading)),
					// km/h -> m/s
					Speed: proto.Float32(float32(p.Speed / 3.6)),
				},
				Timestamp: proto.Uint64(uint64(p.Timestamp.Unix())),
			},
		})
	}
	return fm, nil
}
