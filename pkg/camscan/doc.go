// Package camscan labels and classifies internet-facing camera banners.
//
// Quick start:
//
//	s := camscan.New(camscan.WithKeywords("webcam", "rtsp"))
//	res, err := s.Classify(ctx, devices)
//	if errors.Is(err, camscan.ErrTraining) {
//	    // not enough data, or every banner got the same label
//	}
//	fmt.Println(res.Accuracy, res.ExposedCount, res.BenignCount)
//
// Devices come from your own source, from ReadCSV, or from Search against
// the Shodan host search API. A Scanner holds no per-call state and is safe
// for concurrent use: each Classify call builds a fresh vocabulary and forest.
package camscan
